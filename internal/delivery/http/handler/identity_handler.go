package handler

import (
	"encoding/json"
	"net/http"

	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/delivery/http/middleware"
	"health-records-platform/internal/usecase"
	"health-records-platform/pkg/response"
	"health-records-platform/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type IdentityHandler struct {
	identityUsecase usecase.IdentityUsecase
	validator       *validator.CustomValidator
}

func NewIdentityHandler(identityUsecase usecase.IdentityUsecase, validator *validator.CustomValidator) *IdentityHandler {
	return &IdentityHandler{
		identityUsecase: identityUsecase,
		validator:       validator,
	}
}

func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.identityUsecase.Register(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrWalletAlreadyRegistered:
			response.Conflict(w, "Wallet address is already registered")
		case usecase.ErrUsernameTaken:
			response.Conflict(w, "Username is already taken")
		default:
			response.InternalServerError(w, "Failed to register user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

func (h *IdentityHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityUsecase.GetCurrentUser(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *IdentityHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	user, err := h.identityUsecase.Verify(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to verify user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User verified successfully", user)
}

func (h *IdentityHandler) ResolveByUID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := h.identityUsecase.ResolveByUID(r.Context(), vars["uid"])
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to resolve user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User resolved successfully", user)
}

func (h *IdentityHandler) ResolveByUsername(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := h.identityUsecase.ResolveByUsername(r.Context(), vars["username"])
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to resolve user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User resolved successfully", user)
}

func (h *IdentityHandler) UpsertHealthProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertHealthProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.identityUsecase.UpsertHealthProfile(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to save health profile")
		return
	}

	response.Success(w, http.StatusOK, "Health profile saved successfully", profile)
}

func (h *IdentityHandler) GetMyHealthProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	profile, err := h.identityUsecase.GetHealthProfile(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrHealthProfileNotFound:
			response.NotFound(w, "Health profile not found")
		default:
			response.InternalServerError(w, "Failed to get health profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Health profile retrieved successfully", profile)
}
