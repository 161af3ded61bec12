package appointments

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

// EventSink receives appointment events for asynchronous delivery.
type EventSink interface {
	Insert(ctx context.Context, recipient uuid.UUID, eventType string, payload any) (uuid.UUID, error)
}

// Service implements appointment booking between associated doctors and
// patients.
type Service struct {
	repo     Repository
	doctors  *doctors.Service
	patients *patients.Service
	gate     RelationshipGate
	sink     EventSink
	logger   *logging.Logger
}

// NewService creates an appointments service. sink may be nil.
func NewService(repo Repository, doctorSvc *doctors.Service, patientSvc *patients.Service, gate RelationshipGate, sink EventSink, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, doctors: doctorSvc, patients: patientSvc, gate: gate, sink: sink, logger: logger}
}

// Create books an appointment. Patients name the doctor, doctors name the
// patient; either way the pair must hold an active relationship.
func (s *Service) Create(ctx context.Context, identity httpmiddleware.Identity, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var doctorID, patientID uuid.UUID
	if identity.Role == httpmiddleware.RoleDoctor {
		doctor, err := s.doctors.Profile(ctx, identity.UserID.String())
		if err != nil {
			return nil, err
		}
		pid, err := uuid.Parse(req.PatientID)
		if err != nil {
			return nil, patients.ErrPatientNotFound
		}
		doctorID, patientID = doctor.ID, pid
	} else {
		patient, err := s.patients.Profile(ctx, identity.UserID.String())
		if err != nil {
			return nil, err
		}
		did, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, doctors.ErrDoctorNotFound
		}
		doctorID, patientID = did, patient.ID
	}

	active, err := s.gate.ActiveBetween(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrRelationshipRequired
	}

	a := &Appointment{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		PatientID:   patientID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Type:        req.Type,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.enrich(ctx, a)
	s.notify(ctx, a, identity)
	return a, nil
}

// List returns the caller's appointments, soonest first.
func (s *Service) List(ctx context.Context, identity httpmiddleware.Identity) ([]*Appointment, error) {
	var (
		list []*Appointment
		err  error
	)
	if identity.Role == httpmiddleware.RoleDoctor {
		doctor, derr := s.doctors.Profile(ctx, identity.UserID.String())
		if derr != nil {
			return nil, derr
		}
		list, err = s.repo.ListByDoctor(ctx, doctor.ID)
	} else {
		patient, perr := s.patients.Profile(ctx, identity.UserID.String())
		if perr != nil {
			return nil, perr
		}
		list, err = s.repo.ListByPatient(ctx, patient.ID)
	}
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		s.enrich(ctx, a)
	}
	return list, nil
}

func (s *Service) enrich(ctx context.Context, a *Appointment) {
	if doctor, err := s.doctors.Get(ctx, a.DoctorID.String()); err == nil {
		a.DoctorName = doctor.DisplayName()
	}
	if patient, err := s.patients.Get(ctx, a.PatientID.String()); err == nil {
		a.PatientName = patient.FirstName + " " + patient.LastName
	}
}

func (s *Service) notify(ctx context.Context, a *Appointment, creator httpmiddleware.Identity) {
	if s.sink == nil {
		return
	}
	recipient := uuid.Nil
	if creator.Role == httpmiddleware.RoleDoctor {
		if patient, err := s.patients.Get(ctx, a.PatientID.String()); err == nil {
			recipient = patient.UserID
		}
	} else {
		if doctor, err := s.doctors.Get(ctx, a.DoctorID.String()); err == nil {
			recipient = doctor.UserID
		}
	}
	if recipient == uuid.Nil {
		return
	}
	payload := events.AppointmentCreatedV1{
		AppointmentID: a.ID.String(),
		DoctorID:      a.DoctorID.String(),
		PatientID:     a.PatientID.String(),
	}
	if _, err := s.sink.Insert(ctx, recipient, events.TypeAppointmentCreated, payload); err != nil {
		s.logger.Error("failed to enqueue appointment event", "appointment_id", a.ID, "error", err)
	}
}
