package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/somnolink/somnolink/pkg/logging"
)

// Service composes and sends the portal's transactional emails.
type Service struct {
	email         EmailSender
	publicBaseURL string
	logger        *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, publicBaseURL string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewNoopSender(logger)
	}
	return &Service{
		email:         email,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// SendConfirmationEmail sends the signup email-confirmation link.
func (s *Service) SendConfirmationEmail(ctx context.Context, to, toName, tokenHash string) error {
	link := fmt.Sprintf("%s/api/auth/confirm?token_hash=%s&type=signup", s.publicBaseURL, url.QueryEscape(tokenHash))
	msg := EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: "Confirmez votre adresse email",
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nMerci de votre inscription sur Somnolink.\n"+
				"Confirmez votre adresse email en ouvrant ce lien :\n%s\n\n"+
				"Si vous n'êtes pas à l'origine de cette inscription, ignorez ce message.",
			toName, link),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: confirmation email: %w", err)
	}
	return nil
}

// SendInvitationEmail sends a doctor's join link to a patient address.
// The link format is /join/<urlencoded-token>.
func (s *Service) SendInvitationEmail(ctx context.Context, to, doctorName, token string) error {
	link := fmt.Sprintf("%s/join/%s", s.publicBaseURL, url.PathEscape(token))
	msg := EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s vous invite sur Somnolink", doctorName),
		Body: fmt.Sprintf(
			"Bonjour,\n\nLe Dr %s vous invite à rejoindre son suivi d'apnée du sommeil sur Somnolink.\n"+
				"Pour accepter l'invitation, ouvrez ce lien :\n%s\n\n"+
				"Ce lien est personnel, ne le partagez pas.",
			doctorName, link),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: invitation email: %w", err)
	}
	return nil
}
