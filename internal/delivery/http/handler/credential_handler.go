package handler

import (
	"encoding/json"
	"net/http"

	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/usecase"
	"health-records-platform/pkg/response"
	"health-records-platform/pkg/validator"
)

type CredentialHandler struct {
	credentialUsecase usecase.EmergencyCredentialUsecase
	validator         *validator.CustomValidator
}

func NewCredentialHandler(credentialUsecase usecase.EmergencyCredentialUsecase, validator *validator.CustomValidator) *CredentialHandler {
	return &CredentialHandler{
		credentialUsecase: credentialUsecase,
		validator:         validator,
	}
}

func (h *CredentialHandler) Generate(w http.ResponseWriter, r *http.Request) {
	credential, err := h.credentialUsecase.Generate(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to generate credential")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Credential generated successfully", credential)
}

func (h *CredentialHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	credential, err := h.credentialUsecase.GetLive(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrCredentialNotFound:
			response.NotFound(w, "No live credential exists")
		default:
			response.InternalServerError(w, "Failed to get credential")
		}
		return
	}

	response.Success(w, http.StatusOK, "Credential retrieved successfully", credential)
}

func (h *CredentialHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req dto.DecodeCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	decoded, err := h.credentialUsecase.Decode(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrMalformedPayload:
			response.Error(w, http.StatusBadRequest, "Credential payload is not valid", nil)
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to decode credential")
		}
		return
	}

	response.Success(w, http.StatusOK, "Credential decoded successfully", decoded)
}
