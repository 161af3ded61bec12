package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/somnolink/somnolink/pkg/logging"
)

type captureSender struct {
	sent []EmailMessage
}

func (c *captureSender) Send(_ context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestSendInvitationEmailEncodesToken(t *testing.T) {
	capture := &captureSender{}
	svc := NewService(capture, "https://somnolink.fr", logging.Default())

	err := svc.SendInvitationEmail(context.Background(), "patient@example.fr", "Martin", "abc/def+g")
	if err != nil {
		t.Fatalf("send invitation: %v", err)
	}
	if len(capture.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(capture.sent))
	}
	body := capture.sent[0].Body
	if !strings.Contains(body, "https://somnolink.fr/join/abc%2Fdef+g") {
		t.Errorf("join link should be path-escaped, body:\n%s", body)
	}
	if !strings.Contains(capture.sent[0].Subject, "Martin") {
		t.Errorf("subject should name the doctor, got %q", capture.sent[0].Subject)
	}
}

func TestSendConfirmationEmail(t *testing.T) {
	capture := &captureSender{}
	svc := NewService(capture, "https://somnolink.fr", logging.Default())

	if err := svc.SendConfirmationEmail(context.Background(), "p@example.fr", "Paul", "tok123"); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}
	if !strings.Contains(capture.sent[0].Body, "/api/auth/confirm?token_hash=tok123&type=signup") {
		t.Errorf("unexpected confirmation link, body:\n%s", capture.sent[0].Body)
	}
}

func TestNilSenderDegradesToNoop(t *testing.T) {
	svc := NewService(nil, "https://somnolink.fr", logging.Default())
	if err := svc.SendInvitationEmail(context.Background(), "p@example.fr", "Martin", "tok"); err != nil {
		t.Fatalf("noop sender should not fail: %v", err)
	}
}
