package messaging

import (
	"context"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/internal/events"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// RelationshipGate reports whether an active relationship authorizes the
// pair. Satisfied by *invitations.Service.
type RelationshipGate interface {
	ActiveBetween(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// EventSink receives message events for asynchronous delivery.
type EventSink interface {
	Insert(ctx context.Context, recipient uuid.UUID, eventType string, payload any) (uuid.UUID, error)
}

// Service implements messaging between associated doctors and patients.
// Every operation resolves the caller to their doctor or patient profile
// first; conversations are only ever read through participant-scoped
// queries.
type Service struct {
	store    *Store
	doctors  *doctors.Service
	patients *patients.Service
	gate     RelationshipGate
	sink     EventSink
	logger   *logging.Logger
}

// NewService creates a messaging service. sink may be nil when event
// delivery is disabled.
func NewService(store *Store, doctorSvc *doctors.Service, patientSvc *patients.Service, gate RelationshipGate, sink EventSink, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, doctors: doctorSvc, patients: patientSvc, gate: gate, sink: sink, logger: logger}
}

// partyID resolves the caller's identity to their doctor or patient profile id.
func (s *Service) partyID(ctx context.Context, identity httpmiddleware.Identity) (uuid.UUID, error) {
	if identity.Role == httpmiddleware.RoleDoctor {
		doctor, err := s.doctors.Profile(ctx, identity.UserID.String())
		if err != nil {
			return uuid.Nil, err
		}
		return doctor.ID, nil
	}
	patient, err := s.patients.Profile(ctx, identity.UserID.String())
	if err != nil {
		return uuid.Nil, err
	}
	return patient.ID, nil
}

// ListConversations lists the caller's conversations with unread counts and
// counterparty names.
func (s *Service) ListConversations(ctx context.Context, identity httpmiddleware.Identity) ([]Conversation, error) {
	party, err := s.partyID(ctx, identity)
	if err != nil {
		return nil, err
	}
	convs, err := s.store.ListForParty(ctx, party, identity.UserID)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		s.enrich(ctx, &convs[i])
	}
	return convs, nil
}

// OpenConversation returns the conversation between the caller and the other
// party, creating it on first contact. The active relationship gate runs
// before any row is written.
func (s *Service) OpenConversation(ctx context.Context, identity httpmiddleware.Identity, otherPartyID string) (*Conversation, error) {
	other, err := uuid.Parse(otherPartyID)
	if err != nil {
		return nil, ErrConversationNotFound
	}
	party, err := s.partyID(ctx, identity)
	if err != nil {
		return nil, err
	}

	doctorID, patientID := other, party
	if identity.Role == httpmiddleware.RoleDoctor {
		doctorID, patientID = party, other
	}

	active, err := s.gate.ActiveBetween(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrRelationshipRequired
	}

	conv, err := s.store.EnsureConversation(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, conv)
	return conv, nil
}

// Messages returns the messages of a conversation the caller participates in.
func (s *Service) Messages(ctx context.Context, identity httpmiddleware.Identity, conversationID string) ([]Message, error) {
	conv, err := s.participantConversation(ctx, identity, conversationID)
	if err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conv.ID)
}

// Send appends a message and notifies the other participant.
func (s *Service) Send(ctx context.Context, identity httpmiddleware.Identity, conversationID string, req *SendMessageRequest) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	conv, err := s.participantConversation(ctx, identity, conversationID)
	if err != nil {
		return nil, err
	}

	// The relationship may have been rejected after the conversation was
	// opened; sending re-checks it.
	active, err := s.gate.ActiveBetween(ctx, conv.DoctorID, conv.PatientID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrRelationshipRequired
	}

	msg, err := s.store.InsertMessage(ctx, conv.ID, identity.UserID, req.Body)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, conv, msg, identity)
	return msg, nil
}

// MarkRead stamps read_at on the listed messages for the calling reader.
func (s *Service) MarkRead(ctx context.Context, identity httpmiddleware.Identity, conversationID string, req *MarkReadRequest) (int64, error) {
	conv, err := s.participantConversation(ctx, identity, conversationID)
	if err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.store.MarkRead(ctx, conv.ID, identity.UserID, ids)
}

func (s *Service) participantConversation(ctx context.Context, identity httpmiddleware.Identity, conversationID string) (*Conversation, error) {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, ErrConversationNotFound
	}
	party, err := s.partyID(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.store.GetForParticipant(ctx, id, party)
}

func (s *Service) enrich(ctx context.Context, conv *Conversation) {
	if doctor, err := s.doctors.Get(ctx, conv.DoctorID.String()); err == nil {
		conv.DoctorName = doctor.DisplayName()
	}
	if patient, err := s.patients.Get(ctx, conv.PatientID.String()); err == nil {
		conv.PatientName = patient.FirstName + " " + patient.LastName
	}
}

func (s *Service) notify(ctx context.Context, conv *Conversation, msg *Message, sender httpmiddleware.Identity) {
	if s.sink == nil {
		return
	}
	recipient := uuid.Nil
	if sender.Role == httpmiddleware.RoleDoctor {
		if patient, err := s.patients.Get(ctx, conv.PatientID.String()); err == nil {
			recipient = patient.UserID
		}
	} else {
		if doctor, err := s.doctors.Get(ctx, conv.DoctorID.String()); err == nil {
			recipient = doctor.UserID
		}
	}
	if recipient == uuid.Nil {
		return
	}
	payload := events.MessageCreatedV1{
		ConversationID: conv.ID.String(),
		MessageID:      msg.ID.String(),
		SenderUserID:   sender.UserID.String(),
	}
	if _, err := s.sink.Insert(ctx, recipient, events.TypeMessageCreated, payload); err != nil {
		s.logger.Error("failed to enqueue message event",
			"conversation_id", conv.ID, "message_id", msg.ID, "error", err)
	}
}
