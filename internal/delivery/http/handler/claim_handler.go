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

type ClaimHandler struct {
	claimUsecase usecase.ClaimUsecase
	validator    *validator.CustomValidator
}

func NewClaimHandler(claimUsecase usecase.ClaimUsecase, validator *validator.CustomValidator) *ClaimHandler {
	return &ClaimHandler{
		claimUsecase: claimUsecase,
		validator:    validator,
	}
}

func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	claim, err := h.claimUsecase.Submit(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrInvalidConnection:
			response.Error(w, http.StatusConflict, "Claim requires an active insurance connection owned by the patient", nil)
		default:
			response.InternalServerError(w, "Failed to submit claim")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Claim submitted successfully", claim)
}

func (h *ClaimHandler) PatientApprove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	claimID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid claim ID", nil)
		return
	}

	var req dto.PatientClaimDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	claim, err := h.claimUsecase.PatientApprove(r.Context(), claimID, req.Note)
	if err != nil {
		h.writeClaimError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Claim confirmed successfully", claim)
}

func (h *ClaimHandler) PatientReject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	claimID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid claim ID", nil)
		return
	}

	var req dto.RejectClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	claim, err := h.claimUsecase.PatientReject(r.Context(), claimID, req.Reason)
	if err != nil {
		h.writeClaimError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Claim rejected successfully", claim)
}

func (h *ClaimHandler) ProviderApprove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	claimID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid claim ID", nil)
		return
	}

	claim, err := h.claimUsecase.ProviderApprove(r.Context(), claimID)
	if err != nil {
		h.writeClaimError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Claim approved successfully", claim)
}

func (h *ClaimHandler) ProviderReject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	claimID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid claim ID", nil)
		return
	}

	var req dto.RejectClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	claim, err := h.claimUsecase.ProviderReject(r.Context(), claimID, req.Reason)
	if err != nil {
		h.writeClaimError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Claim rejected successfully", claim)
}

func (h *ClaimHandler) Pay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	claimID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid claim ID", nil)
		return
	}

	claim, err := h.claimUsecase.Pay(r.Context(), claimID)
	if err != nil {
		h.writeClaimError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Claim paid successfully", claim)
}

func (h *ClaimHandler) GetMyClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claimUsecase.ListForPatient(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get claims")
		return
	}

	response.Success(w, http.StatusOK, "Claims retrieved successfully", claims)
}

func (h *ClaimHandler) GetProviderClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claimUsecase.ListForProvider(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrProviderNotFound:
			response.NotFound(w, "You have no registered provider profile")
		default:
			response.InternalServerError(w, "Failed to get claims")
		}
		return
	}

	response.Success(w, http.StatusOK, "Claims retrieved successfully", claims)
}

// writeClaimError maps the shared claim workflow errors to HTTP responses
func (h *ClaimHandler) writeClaimError(w http.ResponseWriter, err error) {
	switch err {
	case usecase.ErrClaimNotFound:
		response.NotFound(w, "Claim not found")
	case usecase.ErrClaimNotOwned:
		response.Forbidden(w, "Claim does not belong to you")
	case usecase.ErrNotProviderOwner:
		response.Forbidden(w, "Claim does not belong to your provider")
	case usecase.ErrConnectionNotFound:
		response.NotFound(w, "Connection not found")
	case usecase.ErrProviderNotFound:
		response.NotFound(w, "Insurance provider not found")
	case usecase.ErrClaimNotPending:
		response.Error(w, http.StatusConflict, "Claim is not awaiting patient confirmation", nil)
	case usecase.ErrClaimNotPatientApproved:
		response.Error(w, http.StatusConflict, "Claim is not awaiting provider decision", nil)
	case usecase.ErrClaimNotApproved:
		response.Error(w, http.StatusConflict, "Claim is not approved for payout", nil)
	case usecase.ErrClaimReasonRequired:
		response.Error(w, http.StatusBadRequest, "A rejection reason is required", nil)
	default:
		response.InternalServerError(w, "Failed to process claim")
	}
}
