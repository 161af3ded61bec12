// Package realtime pushes outbox events to connected browsers over
// WebSockets so doctor and patient dashboards refresh without polling.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/events"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Frame is what clients receive on the wire.
type Frame struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const textMessage = 1 // gorilla's websocket.TextMessage

// Hub tracks connections per user. A user may hold several (multiple tabs).
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]map[Conn]struct{}
	logger *logging.Logger
}

// NewHub creates a hub
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{conns: make(map[uuid.UUID]map[Conn]struct{}), logger: logger}
}

// Register attaches a connection to a user
func (h *Hub) Register(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister detaches and closes a connection
func (h *Hub) Unregister(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	_ = conn.Close()
}

// ConnectionCount reports the number of live connections for a user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Handle implements events.DeliveryHandler: it fans an outbox entry out to
// every connection of the recipient. A write failure drops that connection;
// the entry is still considered delivered because the UI reloads state on
// reconnect.
func (h *Hub) Handle(ctx context.Context, entry events.OutboxEntry) error {
	frame := Frame{
		Type:      entry.Type,
		Payload:   entry.Payload,
		Timestamp: entry.CreatedAt,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns[entry.RecipientUserID]))
	for conn := range h.conns[entry.RecipientUserID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteMessage(textMessage, data); err != nil {
			h.logger.Warn("websocket write failed, dropping connection",
				"user_id", entry.RecipientUserID, "error", err)
			h.Unregister(entry.RecipientUserID, conn)
		}
	}
	return nil
}

var _ events.DeliveryHandler = (*Hub)(nil)
