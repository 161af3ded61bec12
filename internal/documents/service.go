package documents

import (
	"context"
	"fmt"
	"strings"

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

// Service implements patient documents: polygraphy reports, prescriptions,
// device compliance exports. Patients own their files; doctors get read
// access through an active relationship.
type Service struct {
	repo     Repository
	blobs    *BlobStore
	doctors  *doctors.Service
	patients *patients.Service
	gate     RelationshipGate
	logger   *logging.Logger
}

// NewService creates a documents service.
func NewService(repo Repository, blobs *BlobStore, doctorSvc *doctors.Service, patientSvc *patients.Service, gate RelationshipGate, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, blobs: blobs, doctors: doctorSvc, patients: patientSvc, gate: gate, logger: logger}
}

// Upload stores a file for the calling patient.
func (s *Service) Upload(ctx context.Context, patientUserID uuid.UUID, filename, contentType string, data []byte) (*Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, ErrFilenameRequired
	}
	if len(data) > maxDocumentSize {
		return nil, ErrDocumentTooLarge
	}
	if !s.blobs.Enabled() {
		return nil, ErrStorageDisabled
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return nil, err
	}

	d := &Document{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedBy:  patientUserID,
	}
	d.Key = fmt.Sprintf("documents/%s/%s/%s", patient.ID, d.ID, filename)

	if err := s.blobs.Put(ctx, d.Key, contentType, data); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		// Orphaned blobs are cleaned up rather than left behind.
		if derr := s.blobs.Delete(ctx, d.Key); derr != nil {
			s.logger.Warn("failed to clean up orphaned blob", "key", d.Key, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("document uploaded", "document_id", d.ID, "patient_id", patient.ID, "size", d.Size)
	return d, nil
}

// ListOwn returns the calling patient's documents.
func (s *Service) ListOwn(ctx context.Context, patientUserID uuid.UUID) ([]*Document, error) {
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patient.ID)
}

// ListForDoctor returns a patient's documents for the calling doctor, gated
// on an active relationship.
func (s *Service) ListForDoctor(ctx context.Context, identity httpmiddleware.Identity, patientID string) ([]*Document, error) {
	pid, err := s.gatedPatient(ctx, identity, patientID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, pid)
}

// Download returns a document's metadata and content for its owner.
func (s *Service) Download(ctx context.Context, patientUserID uuid.UUID, id string) (*Document, []byte, error) {
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return nil, nil, err
	}
	return s.fetch(ctx, id, patient.ID)
}

// DownloadForDoctor returns a document for a doctor with an active
// relationship to its owner.
func (s *Service) DownloadForDoctor(ctx context.Context, identity httpmiddleware.Identity, patientID, id string) (*Document, []byte, error) {
	pid, err := s.gatedPatient(ctx, identity, patientID)
	if err != nil {
		return nil, nil, err
	}
	return s.fetch(ctx, id, pid)
}

// Delete removes a document owned by the calling patient, blob included.
func (s *Service) Delete(ctx context.Context, patientUserID uuid.UUID, id string) error {
	patient, err := s.patients.Profile(ctx, patientUserID.String())
	if err != nil {
		return err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrDocumentNotFound
	}
	d, err := s.repo.Delete(ctx, parsed, patient.ID)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, d.Key); err != nil {
		s.logger.Warn("failed to delete blob", "key", d.Key, "error", err)
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, id string, patientID uuid.UUID) (*Document, []byte, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, ErrDocumentNotFound
	}
	d, err := s.repo.GetForPatient(ctx, parsed, patientID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, d.Key)
	if err != nil {
		return nil, nil, err
	}
	return d, data, nil
}

func (s *Service) gatedPatient(ctx context.Context, identity httpmiddleware.Identity, patientID string) (uuid.UUID, error) {
	doctor, err := s.doctors.Profile(ctx, identity.UserID.String())
	if err != nil {
		return uuid.Nil, err
	}
	pid, err := uuid.Parse(patientID)
	if err != nil {
		return uuid.Nil, patients.ErrPatientNotFound
	}
	active, err := s.gate.ActiveBetween(ctx, doctor.ID, pid)
	if err != nil {
		return uuid.Nil, err
	}
	if !active {
		return uuid.Nil, ErrAccessDenied
	}
	return pid, nil
}
