package messaging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store persists conversations and messages.
type Store struct {
	db *sql.DB
}

// NewStore creates a messaging store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureConversation returns the conversation for a pair, creating it on
// first contact. The unique pair constraint makes concurrent creation safe.
func (s *Store) EnsureConversation(ctx context.Context, doctorID, patientID uuid.UUID) (*Conversation, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, doctor_id, patient_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (doctor_id, patient_id) DO NOTHING`,
		uuid.New(), doctorID, patientID)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to ensure conversation: %w", err)
	}

	var c Conversation
	err = s.db.QueryRowContext(ctx, `
		SELECT id, doctor_id, patient_id, created_at
		FROM conversations WHERE doctor_id = $1 AND patient_id = $2`,
		doctorID, patientID).Scan(&c.ID, &c.DoctorID, &c.PatientID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to load conversation: %w", err)
	}
	return &c, nil
}

// GetForParticipant loads a conversation only when the given doctor or
// patient id is one of its two parties.
func (s *Store) GetForParticipant(ctx context.Context, conversationID, partyID uuid.UUID) (*Conversation, error) {
	var c Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, doctor_id, patient_id, created_at
		FROM conversations
		WHERE id = $1 AND (doctor_id = $2 OR patient_id = $2)`,
		conversationID, partyID).Scan(&c.ID, &c.DoctorID, &c.PatientID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to load conversation: %w", err)
	}
	return &c, nil
}

// ListForParty lists conversations where the doctor or patient id is a
// participant, newest activity first, with the caller's unread count.
func (s *Store) ListForParty(ctx context.Context, partyID, callerUserID uuid.UUID) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.doctor_id, c.patient_id, c.created_at,
		       COUNT(m.id) FILTER (WHERE m.read_at IS NULL AND m.sender_user_id <> $2) AS unread
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.doctor_id = $1 OR c.patient_id = $1
		GROUP BY c.id
		ORDER BY COALESCE(MAX(m.created_at), c.created_at) DESC`,
		partyID, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to list conversations: %w", err)
	}
	defer rows.Close()

	out := []Conversation{}
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.DoctorID, &c.PatientID, &c.CreatedAt, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("messaging: failed to scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertMessage appends a message to a conversation
func (s *Store) InsertMessage(ctx context.Context, conversationID, senderUserID uuid.UUID, body string) (*Message, error) {
	m := Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderUserID:   senderUserID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationID, m.SenderUserID, m.Body, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to insert message: %w", err)
	}
	return &m, nil
}

// ListMessages returns a conversation's messages in chronological order
func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_user_id, body, read_at, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderUserID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("messaging: failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead stamps read_at on the listed messages in one statement. Only
// messages the reader received are touched; their own stay untouched.
func (s *Store) MarkRead(ctx context.Context, conversationID, readerUserID uuid.UUID, messageIDs []uuid.UUID) (int64, error) {
	ids := make([]string, len(messageIDs))
	for i, id := range messageIDs {
		ids[i] = id.String()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET read_at = NOW()
		WHERE conversation_id = $1
		  AND id = ANY($2)
		  AND sender_user_id <> $3
		  AND read_at IS NULL`,
		conversationID, pq.Array(ids), readerUserID)
	if err != nil {
		return 0, fmt.Errorf("messaging: failed to mark messages read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("messaging: rows affected: %w", err)
	}
	return n, nil
}
