package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	list, err := h.service.List(r.Context(), identity)
	if err != nil {
		h.fail(w, err, "list appointments failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"appointments": list})
}

// Create handles POST /api/appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	a, err := h.service.Create(r.Context(), identity, &req)
	if err != nil {
		h.fail(w, err, "create appointment failed")
		return
	}
	respond.Success(w, http.StatusCreated, map[string]any{"appointment": a})
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, doctors.ErrDoctorNotFound), errors.Is(err, patients.ErrPatientNotFound):
		respond.Error(w, http.StatusNotFound, respond.MsgNotFound)
	case errors.Is(err, ErrRelationshipRequired):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrScheduleRequired), errors.Is(err, ErrScheduleInPast):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
