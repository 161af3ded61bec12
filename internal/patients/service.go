package patients

import (
	"context"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Service owns patient profiles and the lazy bootstrapping of profiles from
// signup metadata.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService creates a patients service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// EnsureForUser makes sure exactly one patient profile exists for the
// identity, creating it from signup metadata when absent. Missing names fall
// back to the sentinel placeholders. Idempotent: a second call returns the
// existing row untouched.
func (s *Service) EnsureForUser(ctx context.Context, user *auth.User) (*Patient, error) {
	firstName := user.FirstName
	if firstName == "" {
		firstName = DefaultFirstName
	}
	lastName := user.LastName
	if lastName == "" {
		lastName = DefaultLastName
	}

	patient, err := s.repo.Ensure(ctx, &Patient{
		ID:          uuid.New(),
		UserID:      user.ID,
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: user.DateOfBirth,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("patient profile ensured", "patient_id", patient.ID, "user_id", user.ID)
	return patient, nil
}

// Profile loads the patient profile owned by userID.
func (s *Service) Profile(ctx context.Context, userID string) (*Patient, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Get loads a patient by id.
func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}
