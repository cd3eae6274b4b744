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

type AccessGrantHandler struct {
	accessGrantUsecase usecase.AccessGrantUsecase
	validator          *validator.CustomValidator
}

func NewAccessGrantHandler(accessGrantUsecase usecase.AccessGrantUsecase, validator *validator.CustomValidator) *AccessGrantHandler {
	return &AccessGrantHandler{
		accessGrantUsecase: accessGrantUsecase,
		validator:          validator,
	}
}

func (h *AccessGrantHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	grant, err := h.accessGrantUsecase.RequestAccess(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrRequesterNotFound:
			response.NotFound(w, "Requester not found")
		default:
			response.InternalServerError(w, "Failed to request access")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Access requested successfully", grant)
}

func (h *AccessGrantHandler) Respond(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	grantID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid grant ID", nil)
		return
	}

	var req dto.RespondAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	grant, err := h.accessGrantUsecase.Respond(r.Context(), grantID, req.Approve)
	if err != nil {
		switch err {
		case usecase.ErrGrantNotFound:
			response.NotFound(w, "Access grant not found")
		case usecase.ErrGrantNotOwned:
			response.Forbidden(w, "Access grant does not belong to you")
		case usecase.ErrGrantAlreadyResponded:
			response.Error(w, http.StatusConflict, "Access grant has already been responded to", nil)
		default:
			response.InternalServerError(w, "Failed to respond to access grant")
		}
		return
	}

	response.Success(w, http.StatusOK, "Access grant responded successfully", grant)
}

func (h *AccessGrantHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	grantID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid grant ID", nil)
		return
	}

	grant, err := h.accessGrantUsecase.Revoke(r.Context(), grantID)
	if err != nil {
		switch err {
		case usecase.ErrGrantNotFound:
			response.NotFound(w, "Access grant not found")
		case usecase.ErrGrantNotOwned:
			response.Forbidden(w, "Access grant does not belong to you")
		case usecase.ErrGrantNotGranted:
			response.Error(w, http.StatusConflict, "Only a granted access can be revoked", nil)
		default:
			response.InternalServerError(w, "Failed to revoke access grant")
		}
		return
	}

	response.Success(w, http.StatusOK, "Access grant revoked successfully", grant)
}

func (h *AccessGrantHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	req := dto.CheckAccessRequest{
		PatientUID:   r.URL.Query().Get("patient_uid"),
		RequesterUID: r.URL.Query().Get("requester_uid"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.accessGrantUsecase.CheckAccess(r.Context(), req.PatientUID, req.RequesterUID)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrRequesterNotFound:
			response.NotFound(w, "Requester not found")
		default:
			response.InternalServerError(w, "Failed to check access")
		}
		return
	}

	response.Success(w, http.StatusOK, "Access checked successfully", result)
}

func (h *AccessGrantHandler) GetMyGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.accessGrantUsecase.ListForPatient(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get access grants")
		return
	}

	response.Success(w, http.StatusOK, "Access grants retrieved successfully", grants)
}

func (h *AccessGrantHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	grants, err := h.accessGrantUsecase.ListForRequester(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get access requests")
		return
	}

	response.Success(w, http.StatusOK, "Access requests retrieved successfully", grants)
}
