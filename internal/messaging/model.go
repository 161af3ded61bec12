package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation is the single thread between one doctor and one patient.
// At most one exists per pair.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	CreatedAt time.Time `json:"created_at"`

	// Enriched for list views.
	DoctorName  string `json:"doctor_name,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
	UnreadCount int    `json:"unread_count"`
}

// Message is one entry in a conversation. read_at is stamped when the
// recipient marks it read; the sender's own messages never carry it.
type Message struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderUserID   uuid.UUID  `json:"sender_user_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

const maxMessageLength = 4000

// SendMessageRequest is the body for posting a message.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// Validate trims and bounds the message body.
func (r *SendMessageRequest) Validate() error {
	r.Body = strings.TrimSpace(r.Body)
	if r.Body == "" {
		return ErrEmptyMessage
	}
	if len(r.Body) > maxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// MarkReadRequest lists the message ids to mark read in one call.
type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}
