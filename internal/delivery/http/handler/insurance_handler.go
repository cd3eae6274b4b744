package handler

import (
	"encoding/json"
	"net/http"

	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/usecase"
	"health-records-platform/pkg/response"
	"health-records-platform/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type InsuranceHandler struct {
	insuranceUsecase usecase.InsuranceUsecase
	validator        *validator.CustomValidator
}

func NewInsuranceHandler(insuranceUsecase usecase.InsuranceUsecase, validator *validator.CustomValidator) *InsuranceHandler {
	return &InsuranceHandler{
		insuranceUsecase: insuranceUsecase,
		validator:        validator,
	}
}

func (h *InsuranceHandler) RegisterProvider(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	provider, err := h.insuranceUsecase.RegisterProvider(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrProviderExists:
			response.Conflict(w, "A provider profile already exists for this account")
		default:
			response.InternalServerError(w, "Failed to register provider")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Provider registered successfully", provider)
}

func (h *InsuranceHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.insuranceUsecase.ListProviders(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get providers")
		return
	}

	response.Success(w, http.StatusOK, "Providers retrieved successfully", providers)
}

func (h *InsuranceHandler) RequestConnection(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	connection, err := h.insuranceUsecase.RequestConnection(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrProviderNotFound:
			response.NotFound(w, "Insurance provider not found")
		case usecase.ErrConnectionExists:
			response.Conflict(w, "A pending or active connection already exists for this provider")
		default:
			response.InternalServerError(w, "Failed to request connection")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Connection requested successfully", connection)
}

func (h *InsuranceHandler) ApproveConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	connectionID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid connection ID", nil)
		return
	}

	connection, err := h.insuranceUsecase.ApproveConnection(r.Context(), connectionID)
	if err != nil {
		switch err {
		case usecase.ErrConnectionNotFound:
			response.NotFound(w, "Connection not found")
		case usecase.ErrNotProviderOwner:
			response.Forbidden(w, "Connection does not belong to your provider")
		case usecase.ErrConnectionNotPending:
			response.Error(w, http.StatusConflict, "Connection is not pending", nil)
		default:
			response.InternalServerError(w, "Failed to approve connection")
		}
		return
	}

	response.Success(w, http.StatusOK, "Connection approved successfully", connection)
}

func (h *InsuranceHandler) RejectConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	connectionID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid connection ID", nil)
		return
	}

	var req dto.RejectConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	connection, err := h.insuranceUsecase.RejectConnection(r.Context(), connectionID, req.Reason)
	if err != nil {
		switch err {
		case usecase.ErrConnectionNotFound:
			response.NotFound(w, "Connection not found")
		case usecase.ErrNotProviderOwner:
			response.Forbidden(w, "Connection does not belong to your provider")
		case usecase.ErrRejectionReasonRequired:
			response.Error(w, http.StatusBadRequest, "A rejection reason is required", nil)
		case usecase.ErrConnectionNotPending:
			response.Error(w, http.StatusConflict, "Connection is already disconnected", nil)
		default:
			response.InternalServerError(w, "Failed to reject connection")
		}
		return
	}

	response.Success(w, http.StatusOK, "Connection rejected successfully", connection)
}

func (h *InsuranceHandler) PayMonthlyFee(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	connectionID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid connection ID", nil)
		return
	}

	connection, err := h.insuranceUsecase.PayMonthlyFee(r.Context(), connectionID)
	if err != nil {
		switch err {
		case usecase.ErrConnectionNotFound:
			response.NotFound(w, "Connection not found")
		case usecase.ErrConnectionNotOwned:
			response.Forbidden(w, "Connection does not belong to you")
		case usecase.ErrConnectionNotConnected:
			response.Error(w, http.StatusConflict, "Connection is not active", nil)
		default:
			response.InternalServerError(w, "Failed to pay monthly fee")
		}
		return
	}

	response.Success(w, http.StatusOK, "Monthly fee paid successfully", connection)
}

func (h *InsuranceHandler) GetMyConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := h.insuranceUsecase.ListMyConnections(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get connections")
		return
	}

	response.Success(w, http.StatusOK, "Connections retrieved successfully", connections)
}

func (h *InsuranceHandler) GetProviderConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := h.insuranceUsecase.ListProviderConnections(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrProviderNotFound:
			response.NotFound(w, "You have no registered provider profile")
		default:
			response.InternalServerError(w, "Failed to get connections")
		}
		return
	}

	response.Success(w, http.StatusOK, "Connections retrieved successfully", connections)
}
