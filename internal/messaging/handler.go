package messaging

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for messaging
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new messaging handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// OpenConversationRequest is the body for opening a conversation. The other
// party is a doctor id for patients and a patient id for doctors.
type OpenConversationRequest struct {
	OtherPartyID string `json:"other_party_id"`
}

// ListConversations handles GET /api/messaging/conversations
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	convs, err := h.service.ListConversations(r.Context(), identity)
	if err != nil {
		h.fail(w, err, "list conversations failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"conversations": convs})
}

// OpenConversation handles POST /api/messaging/conversations
func (h *Handler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req OpenConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OtherPartyID == "" {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	conv, err := h.service.OpenConversation(r.Context(), identity, req.OtherPartyID)
	if err != nil {
		h.fail(w, err, "open conversation failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"conversation": conv})
}

// ListMessages handles GET /api/messaging/conversations/{id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	msgs, err := h.service.Messages(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "list messages failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"messages": msgs})
}

// SendMessage handles POST /api/messaging/conversations/{id}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	msg, err := h.service.Send(r.Context(), identity, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "send message failed")
		return
	}
	respond.Success(w, http.StatusCreated, map[string]any{"message": msg})
}

// MarkRead handles POST /api/messaging/conversations/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	n, err := h.service.MarkRead(r.Context(), identity, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "mark read failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"updated": n})
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrConversationNotFound),
		errors.Is(err, doctors.ErrDoctorNotFound),
		errors.Is(err, patients.ErrPatientNotFound):
		respond.Error(w, http.StatusNotFound, ErrConversationNotFound.Error())
	case errors.Is(err, ErrRelationshipRequired):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
