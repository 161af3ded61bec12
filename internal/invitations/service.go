package invitations

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/internal/events"
	"github.com/somnolink/somnolink/internal/observability/metrics"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// UserGetter loads identities for the join flow.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*auth.User, error)
}

// EventSink receives relationship events for asynchronous delivery.
// Satisfied by *events.OutboxStore.
type EventSink interface {
	Insert(ctx context.Context, recipient uuid.UUID, eventType string, payload any) (uuid.UUID, error)
}

// InvitationMailer sends invitation links by email. Satisfied by
// *notify.Service.
type InvitationMailer interface {
	SendInvitationEmail(ctx context.Context, to, doctorName, token string) error
}

// ResolvedInvitation is the public view of an invitation link, shown to the
// patient before they commit.
type ResolvedInvitation struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Specialty  string    `json:"specialty,omitempty"`
	City       string    `json:"city,omitempty"`
}

// RelationshipView is a relationship enriched with the counterparty's name
// for list endpoints.
type RelationshipView struct {
	Relationship
	DoctorName  string `json:"doctor_name,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
}

// Service implements the association workflow: invitation links on one side,
// patient-initiated requests with doctor approval on the other. Both paths
// converge on the same relationship rows.
type Service struct {
	store    Store
	doctors  *doctors.Service
	patients *patients.Service
	users    UserGetter
	sink     EventSink
	mailer   InvitationMailer
	metrics  *metrics.PortalMetrics
	logger   *logging.Logger
}

// NewService creates an invitations service. sink and mailer may be nil when
// event delivery or email is disabled.
func NewService(store Store, doctorSvc *doctors.Service, patientSvc *patients.Service, users UserGetter, sink EventSink, mailer InvitationMailer, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		doctors:  doctorSvc,
		patients: patientSvc,
		users:    users,
		sink:     sink,
		mailer:   mailer,
		metrics:  m,
		logger:   logger,
	}
}

// SendInvitation emails the calling doctor's invitation link to a patient.
// It fails when invitations are disabled: a dead link in an inbox helps
// nobody.
func (s *Service) SendInvitation(ctx context.Context, doctorUserID uuid.UUID, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	doctor, err := s.doctors.Profile(ctx, doctorUserID.String())
	if err != nil {
		return err
	}
	if !doctor.InvitationEnabled {
		return ErrInvitationsDisabled
	}
	if s.mailer == nil {
		return ErrMailerUnavailable
	}
	if err := s.mailer.SendInvitationEmail(ctx, email, doctor.DisplayName(), doctor.InvitationToken); err != nil {
		return err
	}
	s.logger.Info("invitation email sent", "doctor_id", doctor.ID)
	return nil
}

// Resolve translates an invitation token into the public doctor view. It
// never leaks whether a token exists but is disabled: both cases fail with
// the same error.
func (s *Service) Resolve(ctx context.Context, token string) (*ResolvedInvitation, error) {
	doctor, err := s.doctors.ResolveToken(ctx, token)
	if err != nil {
		s.metrics.ObserveResolution("invalid")
		return nil, err
	}
	s.metrics.ObserveResolution("ok")
	return &ResolvedInvitation{
		DoctorID:   doctor.ID,
		DoctorName: doctor.DisplayName(),
		Specialty:  doctor.Specialty,
		City:       doctor.City,
	}, nil
}

// ConfirmJoin is the token path: the authenticated patient accepts the
// invitation link. The patient profile is created here if signup never got
// that far, then the relationship goes straight to active. A previously
// rejected pair stays rejected.
func (s *Service) ConfirmJoin(ctx context.Context, userID uuid.UUID, token string) (*Relationship, error) {
	user, err := s.users.GetUser(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	if !user.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	doctor, err := s.doctors.ResolveToken(ctx, token)
	if err != nil {
		s.metrics.ObserveResolution("invalid")
		return nil, err
	}

	patient, err := s.patients.EnsureForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	rel, err := s.store.EnsureActive(ctx, doctor.ID, patient.ID)
	if err != nil {
		return nil, err
	}
	if rel.Status == StatusRejected {
		return nil, ErrRelationshipRejected
	}

	s.metrics.ObserveTransition("token_activated")
	s.logger.Info("relationship activated via invitation",
		"relationship_id", rel.ID, "doctor_id", doctor.ID, "patient_id", patient.ID)
	s.emitUpdate(ctx, rel, doctor.UserID, patient.UserID)
	return rel, nil
}

// Request is the patient-initiated path: create a pending request addressed
// to the doctor. Repeating the request is a no-op that returns the existing
// row, whatever its status.
func (s *Service) Request(ctx context.Context, userID uuid.UUID, doctorID string) (*Relationship, error) {
	user, err := s.users.GetUser(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	if !user.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	patient, err := s.patients.EnsureForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	rel, err := s.store.EnsurePending(ctx, doctor.ID, patient.ID)
	if err != nil {
		return nil, err
	}
	if rel.Status == StatusPending {
		s.metrics.ObserveTransition("requested")
		s.logger.Info("association requested",
			"relationship_id", rel.ID, "doctor_id", doctor.ID, "patient_id", patient.ID)
		s.emitUpdate(ctx, rel, doctor.UserID, patient.UserID)
	}
	return rel, nil
}

// Accept moves a pending request addressed to the calling doctor to active.
func (s *Service) Accept(ctx context.Context, doctorUserID uuid.UUID, relationshipID string) (*Relationship, error) {
	return s.decide(ctx, doctorUserID, relationshipID, StatusActive)
}

// Reject moves a pending request addressed to the calling doctor to
// rejected. accepted_at stays null.
func (s *Service) Reject(ctx context.Context, doctorUserID uuid.UUID, relationshipID string) (*Relationship, error) {
	return s.decide(ctx, doctorUserID, relationshipID, StatusRejected)
}

func (s *Service) decide(ctx context.Context, doctorUserID uuid.UUID, relationshipID, to string) (*Relationship, error) {
	doctor, err := s.doctors.Profile(ctx, doctorUserID.String())
	if err != nil {
		return nil, err
	}
	relID, err := uuid.Parse(relationshipID)
	if err != nil {
		return nil, ErrRelationshipNotFound
	}

	rel, err := s.store.Transition(ctx, relID, doctor.ID, to)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition("pending_" + to)
	s.logger.Info("relationship decided",
		"relationship_id", rel.ID, "doctor_id", doctor.ID, "status", rel.Status)

	patientUserID := uuid.Nil
	if patient, perr := s.patients.Get(ctx, rel.PatientID.String()); perr == nil {
		patientUserID = patient.UserID
	}
	s.emitUpdate(ctx, rel, doctor.UserID, patientUserID)
	return rel, nil
}

// DoctorRelationships lists relationships addressed to the calling doctor,
// enriched with patient names.
func (s *Service) DoctorRelationships(ctx context.Context, doctorUserID uuid.UUID, status string) ([]*RelationshipView, error) {
	doctor, err := s.doctors.Profile(ctx, doctorUserID.String())
	if err != nil {
		return nil, err
	}
	rels, err := s.store.ListByDoctor(ctx, doctor.ID, status)
	if err != nil {
		return nil, err
	}

	views := make([]*RelationshipView, 0, len(rels))
	for _, rel := range rels {
		view := &RelationshipView{Relationship: *rel}
		if patient, perr := s.patients.Get(ctx, rel.PatientID.String()); perr == nil {
			view.PatientName = patient.FirstName + " " + patient.LastName
		}
		views = append(views, view)
	}
	return views, nil
}

// PatientRelationships lists the calling patient's relationships, enriched
// with doctor names. A patient without a profile yet simply has none.
func (s *Service) PatientRelationships(ctx context.Context, patientUserID uuid.UUID, status string) ([]*RelationshipView, error) {
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			return []*RelationshipView{}, nil
		}
		return nil, err
	}
	rels, err := s.store.ListByPatient(ctx, patient.ID, status)
	if err != nil {
		return nil, err
	}

	views := make([]*RelationshipView, 0, len(rels))
	for _, rel := range rels {
		view := &RelationshipView{Relationship: *rel}
		if doctor, derr := s.doctors.Get(ctx, rel.DoctorID.String()); derr == nil {
			view.DoctorName = doctor.DisplayName()
		}
		views = append(views, view)
	}
	return views, nil
}

// ActiveBetween reports whether an active relationship links the doctor and
// patient. Other domains use this as their authorization gate.
func (s *Service) ActiveBetween(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	rel, err := s.store.GetByPair(ctx, doctorID, patientID)
	if errors.Is(err, ErrRelationshipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rel.Active(), nil
}

func (s *Service) emitUpdate(ctx context.Context, rel *Relationship, recipients ...uuid.UUID) {
	if s.sink == nil {
		return
	}
	payload := events.RelationshipUpdatedV1{
		RelationshipID: rel.ID.String(),
		DoctorID:       rel.DoctorID.String(),
		PatientID:      rel.PatientID.String(),
		Status:         rel.Status,
	}
	for _, recipient := range recipients {
		if recipient == uuid.Nil {
			continue
		}
		if _, err := s.sink.Insert(ctx, recipient, events.TypeRelationshipUpdated, payload); err != nil {
			s.logger.Error("failed to enqueue relationship event",
				"relationship_id", rel.ID, "recipient", recipient, "error", err)
		}
	}
}
