package antecedents

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

// Handler handles HTTP requests for antecedents
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new antecedents handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/antecedents. Patients read their own history;
// doctors pass ?patient_id= and go through the relationship gate.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var (
		list []*Antecedent
		err  error
	)
	if identity.Role == httpmiddleware.RoleDoctor {
		patientID := r.URL.Query().Get("patient_id")
		if patientID == "" {
			respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
			return
		}
		list, err = h.service.ListForDoctor(r.Context(), identity, patientID)
	} else {
		list, err = h.service.ListOwn(r.Context(), identity.UserID)
	}
	if err != nil {
		h.fail(w, err, "list antecedents failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"antecedents": list})
}

// Create handles POST /api/antecedents
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	a, err := h.service.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		h.fail(w, err, "create antecedent failed")
		return
	}
	respond.Success(w, http.StatusCreated, map[string]any{"antecedent": a})
}

// Update handles PUT /api/antecedents/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	a, err := h.service.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "update antecedent failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"antecedent": a})
}

// Delete handles DELETE /api/antecedents/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	if err := h.service.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "delete antecedent failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrAntecedentNotFound),
		errors.Is(err, doctors.ErrDoctorNotFound),
		errors.Is(err, patients.ErrPatientNotFound):
		respond.Error(w, http.StatusNotFound, respond.MsgNotFound)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrLabelRequired), errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidCodeSystem), errors.Is(err, ErrInvalidYear):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
