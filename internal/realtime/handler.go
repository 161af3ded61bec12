package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/somnolink/somnolink/internal/api/respond"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewHandler creates a realtime handler. checkOrigin guards cross-origin
// upgrades; pass nil to accept same-origin only.
func NewHandler(hub *Hub, checkOrigin func(r *http.Request) bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// Serve handles GET /api/realtime
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	identity, ok := httpmiddleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Register(identity.UserID, conn)
	h.logger.Info("websocket connected", "user_id", identity.UserID)

	// Reads only keep the connection alive; clients never send data.
	go func() {
		defer h.hub.Unregister(identity.UserID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
