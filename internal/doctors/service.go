package doctors

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Service owns doctor profiles and invitation tokens.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService creates a doctors service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// newInvitationToken returns a URL-safe opaque token.
func newInvitationToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("doctors: invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// OnSignup creates the doctor profile for new doctor accounts, satisfying the
// auth bootstrapper hook. Patient signups are a no-op here.
func (s *Service) OnSignup(ctx context.Context, user *auth.User) error {
	if user.Role != "doctor" {
		return nil
	}
	token, err := newInvitationToken()
	if err != nil {
		return err
	}
	doctor := &Doctor{
		ID:                uuid.New(),
		UserID:            user.ID,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		InvitationToken:   token,
		InvitationEnabled: true,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return err
	}
	s.logger.Info("doctor profile created", "doctor_id", doctor.ID, "user_id", user.ID)
	return nil
}

// Profile loads the doctor profile owned by userID.
func (s *Service) Profile(ctx context.Context, userID string) (*Doctor, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// RegenerateToken replaces the invitation token. The previous link dies
// immediately since resolution is by exact match.
func (s *Service) RegenerateToken(ctx context.Context, userID string) (*Doctor, string, error) {
	token, err := newInvitationToken()
	if err != nil {
		return nil, "", err
	}
	doctor, err := s.repo.UpdateToken(ctx, userID, token, true)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("invitation token regenerated", "doctor_id", doctor.ID)
	return doctor, token, nil
}

// SetInvitationsEnabled toggles the enabled flag without touching the token.
func (s *Service) SetInvitationsEnabled(ctx context.Context, userID string, enabled bool) (*Doctor, error) {
	doctor, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	doctor, err = s.repo.UpdateToken(ctx, userID, doctor.InvitationToken, enabled)
	if err != nil {
		return nil, err
	}
	s.logger.Info("invitations toggled", "doctor_id", doctor.ID, "enabled", enabled)
	return doctor, nil
}

// Get loads a doctor by id.
func (s *Service) Get(ctx context.Context, id string) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveToken looks up the doctor behind an enabled invitation token.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Doctor, error) {
	return s.repo.GetByEnabledToken(ctx, token)
}

// Search matches registered doctors by name.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Doctor, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.Search(ctx, query, limit)
}
