package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/somnolink/somnolink/internal/api/respond"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for the doctor's own profile and invitation
// token. Routes are mounted behind the doctor role gate.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new doctors handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetProfile handles GET /api/doctor/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	doctor, err := h.service.Profile(r.Context(), identity.UserID.String())
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("load doctor profile failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{
		"doctor":           doctor,
		"invitation_token": doctor.InvitationToken,
	})
}

// RegenerateToken handles POST /api/doctor/invitation-token
func (h *Handler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	doctor, token, err := h.service.RegenerateToken(r.Context(), identity.UserID.String())
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("regenerate token failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{
		"invitation_token":   token,
		"invitation_enabled": doctor.InvitationEnabled,
	})
}

// UpdateToken handles PUT /api/doctor/invitation-token (enable/disable)
func (h *Handler) UpdateToken(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req UpdateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	doctor, err := h.service.SetInvitationsEnabled(r.Context(), identity.UserID.String(), req.Enabled)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("toggle invitations failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{
		"invitation_enabled": doctor.InvitationEnabled,
	})
}
