package directory

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for directory searches
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new directory handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// SearchDoctors handles GET /api/doctor-search?q=&limit=
func (h *Handler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.service.SearchDoctors(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.fail(w, err, "doctor search failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"doctors": results})
}

// SearchMedications handles GET /api/medicaments-fr?q=&limit=
func (h *Handler) SearchMedications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.service.SearchMedications(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.fail(w, err, "medication search failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"medicaments": results})
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, ErrQueryRequired) {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error(logMsg, "error", err)
	respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
}
