package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/somnolink/somnolink/pkg/logging"
)

// ConfirmationMailer sends the email-confirmation link.
type ConfirmationMailer interface {
	SendConfirmationEmail(ctx context.Context, to, toName, tokenHash string) error
}

// ProfileBootstrapper runs after a successful signup. Wired in main to create
// the doctor profile (with its invitation token) for doctor accounts; patient
// profiles are created lazily at first confirmed access.
type ProfileBootstrapper interface {
	OnSignup(ctx context.Context, user *User) error
}

// Service implements signup, login and email confirmation.
type Service struct {
	repo      Repository
	tokens    *TokenManager
	mailer    ConfirmationMailer
	bootstrap ProfileBootstrapper
	logger    *logging.Logger
}

// NewService creates an auth service.
func NewService(repo Repository, tokens *TokenManager, mailer ConfirmationMailer, bootstrap ProfileBootstrapper, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		tokens:    tokens,
		mailer:    mailer,
		bootstrap: bootstrap,
		logger:    logger,
	}
}

// Signup creates an account and sends the confirmation email. The account
// exists even if the email fails to send; the user can request a fresh link.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateOfBirth
		}
		user.DateOfBirth = &dob
	}

	confirmation, err := NewConfirmationToken()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user, confirmation); err != nil {
		return nil, err
	}

	if s.bootstrap != nil {
		if err := s.bootstrap.OnSignup(ctx, user); err != nil {
			return nil, fmt.Errorf("auth: bootstrap profile: %w", err)
		}
	}

	if s.mailer != nil {
		if err := s.mailer.SendConfirmationEmail(ctx, user.Email, user.FirstName, confirmation); err != nil {
			s.logger.Error("confirmation email failed", "error", err, "user_id", user.ID)
		}
	}

	s.logger.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, *User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Confirm consumes a confirmation token hash.
func (s *Service) Confirm(ctx context.Context, tokenHash string) (*User, error) {
	if strings.TrimSpace(tokenHash) == "" {
		return nil, ErrInvalidConfirmation
	}
	user, err := s.repo.ConfirmByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	s.logger.Info("email confirmed", "user_id", user.ID)
	return user, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
