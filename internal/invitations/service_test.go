package invitations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/internal/events"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

type stubUsers struct {
	users map[uuid.UUID]*auth.User
}

func (s *stubUsers) GetUser(ctx context.Context, id string) (*auth.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}
	user, ok := s.users[parsed]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

type recordingSink struct {
	entries []events.OutboxEntry
}

func (s *recordingSink) Insert(ctx context.Context, recipient uuid.UUID, eventType string, payload any) (uuid.UUID, error) {
	s.entries = append(s.entries, events.OutboxEntry{ID: uuid.New(), RecipientUserID: recipient, Type: eventType})
	return uuid.New(), nil
}

type captureMailer struct {
	to     string
	doctor string
	token  string
	calls  int
}

func (m *captureMailer) SendInvitationEmail(ctx context.Context, to, doctorName, token string) error {
	m.to, m.doctor, m.token = to, doctorName, token
	m.calls++
	return nil
}

type fixture struct {
	svc        *Service
	doctorSvc  *doctors.Service
	sink       *recordingSink
	mailer     *captureMailer
	users      *stubUsers
	doctorUser *auth.User
	token      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Now().UTC()
	doctorUser := &auth.User{
		ID:          uuid.New(),
		Email:       "dr@example.fr",
		Role:        "doctor",
		FirstName:   "Jean",
		LastName:    "Martin",
		ConfirmedAt: &now,
	}

	doctorSvc := doctors.NewService(doctors.NewInMemoryRepository(), logging.Default())
	if err := doctorSvc.OnSignup(context.Background(), doctorUser); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	doctor, err := doctorSvc.Profile(context.Background(), doctorUser.ID.String())
	if err != nil {
		t.Fatalf("seed doctor profile: %v", err)
	}

	patientSvc := patients.NewService(patients.NewInMemoryRepository(), logging.Default())
	users := &stubUsers{users: map[uuid.UUID]*auth.User{doctorUser.ID: doctorUser}}
	sink := &recordingSink{}

	mailer := &captureMailer{}
	svc := NewService(NewInMemoryStore(), doctorSvc, patientSvc, users, sink, mailer, nil, logging.Default())
	return &fixture{
		svc:        svc,
		doctorSvc:  doctorSvc,
		sink:       sink,
		mailer:     mailer,
		users:      users,
		doctorUser: doctorUser,
		token:      doctor.InvitationToken,
	}
}

func (f *fixture) addPatientUser(confirmed bool) *auth.User {
	user := &auth.User{
		ID:        uuid.New(),
		Email:     "patient@example.fr",
		Role:      "patient",
		FirstName: "Claire",
		LastName:  "Dubois",
	}
	if confirmed {
		now := time.Now().UTC()
		user.ConfirmedAt = &now
	}
	f.users.users[user.ID] = user
	return user
}

func TestResolveReturnsDoctorView(t *testing.T) {
	f := newFixture(t)

	resolved, err := f.svc.Resolve(context.Background(), f.token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.DoctorName != "Jean Martin" {
		t.Errorf("unexpected doctor name %q", resolved.DoctorName)
	}
}

func TestResolveUnknownAndDisabledTokensFailIdentically(t *testing.T) {
	f := newFixture(t)

	_, unknownErr := f.svc.Resolve(context.Background(), "no-such-token")
	if !errors.Is(unknownErr, doctors.ErrInvalidInvitation) {
		t.Fatalf("unknown token: got %v", unknownErr)
	}

	if _, err := f.doctorSvc.SetInvitationsEnabled(context.Background(), f.doctorUser.ID.String(), false); err != nil {
		t.Fatalf("disable invitations: %v", err)
	}
	_, disabledErr := f.svc.Resolve(context.Background(), f.token)
	if !errors.Is(disabledErr, doctors.ErrInvalidInvitation) {
		t.Fatalf("disabled token: got %v", disabledErr)
	}
	if unknownErr.Error() != disabledErr.Error() {
		t.Error("disabled tokens must be indistinguishable from unknown ones")
	}
}

func TestConfirmJoinActivatesDirectly(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)

	rel, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token)
	if err != nil {
		t.Fatalf("confirm join: %v", err)
	}
	if rel.Status != StatusActive {
		t.Errorf("token path should activate directly, got %q", rel.Status)
	}
	if rel.AcceptedAt == nil {
		t.Error("active relationship must carry accepted_at")
	}
	if len(f.sink.entries) != 2 {
		t.Errorf("expected events for both parties, got %d", len(f.sink.entries))
	}
}

func TestConfirmJoinBootstrapsPatientProfile(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	patient.FirstName = ""
	patient.LastName = ""

	if _, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token); err != nil {
		t.Fatalf("confirm join: %v", err)
	}

	views, err := f.svc.PatientRelationships(context.Background(), patient.ID, "")
	if err != nil {
		t.Fatalf("patient relationships: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one relationship, got %d", len(views))
	}

	doctorViews, err := f.svc.DoctorRelationships(context.Background(), f.doctorUser.ID, StatusActive)
	if err != nil {
		t.Fatalf("doctor relationships: %v", err)
	}
	if len(doctorViews) != 1 {
		t.Fatalf("expected one active relationship, got %d", len(doctorViews))
	}
	if doctorViews[0].PatientName != patients.DefaultFirstName+" "+patients.DefaultLastName {
		t.Errorf("expected sentinel patient name, got %q", doctorViews[0].PatientName)
	}
}

func TestConfirmJoinRequiresConfirmedEmail(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(false)

	if _, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token); !errors.Is(err, ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}
}

func TestConfirmJoinIsIdempotent(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)

	first, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	second, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if first.ID != second.ID {
		t.Error("repeated confirmation must return the same relationship")
	}
}

func TestRequestThenAccept(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	doctor, _ := f.doctorSvc.Profile(context.Background(), f.doctorUser.ID.String())

	rel, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if rel.Status != StatusPending {
		t.Fatalf("request must create a pending row, got %q", rel.Status)
	}
	if rel.AcceptedAt != nil {
		t.Error("pending relationship must not carry accepted_at")
	}

	accepted, err := f.svc.Accept(context.Background(), f.doctorUser.ID, rel.ID.String())
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusActive || accepted.AcceptedAt == nil {
		t.Errorf("accept must activate and stamp accepted_at, got %q %v", accepted.Status, accepted.AcceptedAt)
	}
}

func TestRequestThenReject(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	doctor, _ := f.doctorSvc.Profile(context.Background(), f.doctorUser.ID.String())

	rel, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	rejected, err := f.svc.Reject(context.Background(), f.doctorUser.ID, rel.ID.String())
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("expected rejected, got %q", rejected.Status)
	}
	if rejected.AcceptedAt != nil {
		t.Error("rejected relationship must keep accepted_at null")
	}

	// terminal: a second decision fails
	if _, err := f.svc.Accept(context.Background(), f.doctorUser.ID, rel.ID.String()); !errors.Is(err, ErrNotPending) {
		t.Errorf("expected ErrNotPending on decided row, got %v", err)
	}

	// and the token path cannot resurrect the pair
	if _, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token); !errors.Is(err, ErrRelationshipRejected) {
		t.Errorf("expected ErrRelationshipRejected, got %v", err)
	}
}

func TestRepeatedRequestIsIdempotent(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	doctor, _ := f.doctorSvc.Profile(context.Background(), f.doctorUser.ID.String())

	first, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first.ID != second.ID || second.Status != StatusPending {
		t.Error("repeated request must return the existing pending row")
	}

	if _, err := f.svc.Reject(context.Background(), f.doctorUser.ID, first.ID.String()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	third, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("request after reject: %v", err)
	}
	if third.Status != StatusRejected {
		t.Errorf("request after rejection must surface the terminal row, got %q", third.Status)
	}
}

func TestTokenConfirmActivatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	doctor, _ := f.doctorSvc.Profile(context.Background(), f.doctorUser.ID.String())

	pending, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	rel, err := f.svc.ConfirmJoin(context.Background(), patient.ID, f.token)
	if err != nil {
		t.Fatalf("confirm join: %v", err)
	}
	if rel.ID != pending.ID {
		t.Error("token path must reuse the pending row for the pair")
	}
	if rel.Status != StatusActive || rel.AcceptedAt == nil {
		t.Errorf("pending row must activate, got %q %v", rel.Status, rel.AcceptedAt)
	}
}

func TestDecisionScopedToAddressedDoctor(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	doctor, _ := f.doctorSvc.Profile(context.Background(), f.doctorUser.ID.String())

	rel, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	now := time.Now().UTC()
	otherUser := &auth.User{ID: uuid.New(), Email: "dr2@example.fr", Role: "doctor", FirstName: "Anne", LastName: "Durand", ConfirmedAt: &now}
	f.users.users[otherUser.ID] = otherUser
	if err := f.doctorSvc.OnSignup(context.Background(), otherUser); err != nil {
		t.Fatalf("seed second doctor: %v", err)
	}

	if _, err := f.svc.Accept(context.Background(), otherUser.ID, rel.ID.String()); !errors.Is(err, ErrRelationshipNotFound) {
		t.Errorf("another doctor must not see the request, got %v", err)
	}
}

func TestSendInvitationEmailsCurrentToken(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.SendInvitation(context.Background(), f.doctorUser.ID, "patient@example.fr"); err != nil {
		t.Fatalf("send invitation: %v", err)
	}
	if f.mailer.calls != 1 || f.mailer.to != "patient@example.fr" {
		t.Errorf("unexpected mailer state %+v", f.mailer)
	}
	if f.mailer.token != f.token {
		t.Error("email must carry the doctor's current token")
	}
	if f.mailer.doctor != "Jean Martin" {
		t.Errorf("unexpected doctor name %q", f.mailer.doctor)
	}
}

func TestSendInvitationValidates(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.SendInvitation(context.Background(), f.doctorUser.ID, "pas-un-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	if _, err := f.doctorSvc.SetInvitationsEnabled(context.Background(), f.doctorUser.ID.String(), false); err != nil {
		t.Fatalf("disable invitations: %v", err)
	}
	if err := f.svc.SendInvitation(context.Background(), f.doctorUser.ID, "patient@example.fr"); !errors.Is(err, ErrInvitationsDisabled) {
		t.Fatalf("expected ErrInvitationsDisabled, got %v", err)
	}
	if f.mailer.calls != 0 {
		t.Error("no email must leave on validation failure")
	}
}

func TestActiveBetween(t *testing.T) {
	f := newFixture(t)
	patient := f.addPatientUser(true)
	doctor, _ := f.doctorSvc.Profile(context.Background(), f.doctorUser.ID.String())

	rel, err := f.svc.Request(context.Background(), patient.ID, doctor.ID.String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	active, err := f.svc.ActiveBetween(context.Background(), rel.DoctorID, rel.PatientID)
	if err != nil || active {
		t.Fatalf("pending must not authorize, got %v %v", active, err)
	}

	if _, err := f.svc.Accept(context.Background(), f.doctorUser.ID, rel.ID.String()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	active, err = f.svc.ActiveBetween(context.Background(), rel.DoctorID, rel.PatientID)
	if err != nil || !active {
		t.Fatalf("active relationship must authorize, got %v %v", active, err)
	}

	active, err = f.svc.ActiveBetween(context.Background(), uuid.New(), rel.PatientID)
	if err != nil || active {
		t.Fatalf("unknown pair must not authorize, got %v %v", active, err)
	}
}
