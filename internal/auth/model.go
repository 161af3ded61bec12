package auth

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an authenticated identity. Doctor and patient profiles reference it
// 1:1 through user_id.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	PasswordHash string `json:"-"`
}

// Confirmed reports whether the email address has been confirmed.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// SignupRequest is the request body for creating an account. First/last name
// and date of birth are the signup metadata the patient bootstrapper reads.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD, optional
}

// Validate validates the signup request.
func (r *SignupRequest) Validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	if r.Role != "doctor" && r.Role != "patient" {
		return ErrInvalidRole
	}
	if r.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
			return ErrInvalidDateOfBirth
		}
	}
	return nil
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
