package terminology

import (
	"errors"
	"net/http"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for terminology search
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new terminology handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Search handles GET /api/terminology-search?q=&system=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	system := r.URL.Query().Get("system")

	resp, err := h.service.Search(r.Context(), system, query)
	if err != nil {
		switch {
		case errors.Is(err, ErrQueryRequired):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTimeout):
			respond.ErrorCode(w, http.StatusGatewayTimeout, err.Error(), "timeout")
		default:
			h.logger.Error("terminology search failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
		}
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{
		"results": resp.Results,
		"source":  resp.Source,
	})
}
