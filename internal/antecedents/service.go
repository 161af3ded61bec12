package antecedents

import (
	"context"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// RelationshipGate reports whether an active relationship authorizes the
// pair. Satisfied by *invitations.Service.
type RelationshipGate interface {
	ActiveBetween(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// Service implements patient medical history. Patients own their entries;
// doctors get read access through an active relationship.
type Service struct {
	repo     Repository
	doctors  *doctors.Service
	patients *patients.Service
	gate     RelationshipGate
	logger   *logging.Logger
}

// NewService creates an antecedents service.
func NewService(repo Repository, doctorSvc *doctors.Service, patientSvc *patients.Service, gate RelationshipGate, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, doctors: doctorSvc, patients: patientSvc, gate: gate, logger: logger}
}

// Create adds an entry to the calling patient's history.
func (s *Service) Create(ctx context.Context, patientUserID uuid.UUID, req *UpsertRequest) (*Antecedent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return nil, err
	}

	a := &Antecedent{
		ID:         uuid.New(),
		PatientID:  patient.ID,
		Kind:       req.Kind,
		Label:      req.Label,
		Code:       req.Code,
		CodeSystem: req.CodeSystem,
		Year:       req.Year,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListOwn returns the calling patient's history.
func (s *Service) ListOwn(ctx context.Context, patientUserID uuid.UUID) ([]*Antecedent, error) {
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patient.ID)
}

// ListForDoctor returns a patient's history for the calling doctor, gated on
// an active relationship.
func (s *Service) ListForDoctor(ctx context.Context, identity httpmiddleware.Identity, patientID string) ([]*Antecedent, error) {
	doctor, err := s.doctors.Profile(ctx, identity.UserID.String())
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(patientID)
	if err != nil {
		return nil, patients.ErrPatientNotFound
	}

	active, err := s.gate.ActiveBetween(ctx, doctor.ID, pid)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrAccessDenied
	}
	return s.repo.ListByPatient(ctx, pid)
}

// Update modifies an entry of the calling patient's history.
func (s *Service) Update(ctx context.Context, patientUserID uuid.UUID, id string, req *UpsertRequest) (*Antecedent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrAntecedentNotFound
	}
	return s.repo.Update(ctx, parsed, patient.ID, req)
}

// Delete removes an entry of the calling patient's history.
func (s *Service) Delete(ctx context.Context, patientUserID uuid.UUID, id string) error {
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrAntecedentNotFound
	}
	return s.repo.Delete(ctx, parsed, patient.ID)
}
