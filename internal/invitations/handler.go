package invitations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for the association workflow.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new invitations handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Resolve handles GET /api/join/{token}. Public: shows the inviting doctor
// before the patient authenticates.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	resolved, err := h.service.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, doctors.ErrInvalidInvitation) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("resolve invitation failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"invitation": resolved})
}

// ConfirmJoin handles POST /api/join/{token}/confirm
func (h *Handler) ConfirmJoin(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())
	token := chi.URLParam(r, "token")

	rel, err := h.service.ConfirmJoin(r.Context(), identity.UserID, token)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrInvalidInvitation):
			respond.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrEmailNotConfirmed):
			respond.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrRelationshipRejected):
			respond.Error(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("confirm join failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		}
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"relationship": rel})
}

// Request handles POST /api/invitations/request (patient side)
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req RequestAssociation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DoctorID == "" {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	rel, err := h.service.Request(r.Context(), identity.UserID, req.DoctorID)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrDoctorNotFound):
			respond.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrEmailNotConfirmed):
			respond.Error(w, http.StatusForbidden, err.Error())
		default:
			h.logger.Error("association request failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		}
		return
	}

	respond.Success(w, http.StatusCreated, map[string]any{"relationship": rel})
}

// SendInvitationRequest is the body for emailing an invitation link.
type SendInvitationRequest struct {
	Email string `json:"email"`
}

// SendInvitation handles POST /api/send-invitation (doctor side)
func (h *Handler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req SendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	if err := h.service.SendInvitation(r.Context(), identity.UserID, req.Email); err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, doctors.ErrDoctorNotFound):
			respond.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvitationsDisabled):
			respond.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrMailerUnavailable):
			respond.Error(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.logger.Error("send invitation failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		}
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"sent": true})
}

// Accept handles POST /api/invitations/{id}/accept (doctor side)
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Accept)
}

// Reject handles POST /api/invitations/{id}/reject (doctor side)
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, doctorUserID uuid.UUID, relationshipID string) (*Relationship, error)) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	rel, err := fn(r.Context(), identity.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRelationshipNotFound), errors.Is(err, doctors.ErrDoctorNotFound):
			respond.Error(w, http.StatusNotFound, ErrRelationshipNotFound.Error())
		case errors.Is(err, ErrNotPending):
			respond.Error(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("relationship decision failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		}
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"relationship": rel})
}

// ListForDoctor handles GET /api/doctor/patients?status=
func (h *Handler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())
	status := r.URL.Query().Get("status")

	views, err := h.service.DoctorRelationships(r.Context(), identity.UserID, status)
	if err != nil {
		if errors.Is(err, doctors.ErrDoctorNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("list doctor relationships failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"relationships": views})
}

// ListForPatient handles GET /api/patient/doctors?status=
func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())
	status := r.URL.Query().Get("status")

	views, err := h.service.PatientRelationships(r.Context(), identity.UserID, status)
	if err != nil {
		h.logger.Error("list patient relationships failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"relationships": views})
}
