package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Signup handles POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	user, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			respond.Error(w, http.StatusConflict, err.Error())
		case isValidationError(err):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("signup failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		}
		return
	}

	respond.Success(w, http.StatusCreated, map[string]any{"user": user})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	token, user, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Confirm handles GET /api/auth/confirm. It consumes the standard
// confirmation query parameters: token_hash plus an optional error/error_code
// pair carried by expired links.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error_code"); errCode != "" || q.Get("error") != "" {
		respond.ErrorCode(w, http.StatusBadRequest, ErrInvalidConfirmation.Error(), q.Get("error_code"))
		return
	}

	tokenHash := q.Get("token_hash")
	if tokenHash == "" {
		// Some clients send the value under code.
		tokenHash = q.Get("code")
	}

	user, err := h.service.Confirm(r.Context(), tokenHash)
	if err != nil {
		if errors.Is(err, ErrInvalidConfirmation) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("confirmation failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"user": user})
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidDateOfBirth)
}
