package handler

import (
	"net/http"

	"health-records-platform/internal/service"
	"health-records-platform/pkg/response"
)

// BillingHandler exposes a manual sweep trigger for administrators. The
// scheduler runs the same sweep on its own interval; this endpoint exists for
// operational runs outside the schedule.
type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

func (h *BillingHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.billingService.RunBillingSweep(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to run billing sweep")
		return
	}

	response.Success(w, http.StatusOK, "Billing sweep completed", result)
}
