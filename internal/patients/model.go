package patients

import (
	"time"

	"github.com/google/uuid"
)

// Sentinel values used when signup metadata is incomplete.
const (
	DefaultFirstName = "Patient"
	DefaultLastName  = "Inconnu"
)

// Patient is a patient profile, keyed 1:1 with an authenticated identity.
// Created lazily: either at signup or at first successful invitation
// confirmation, from the identity's signup metadata.
type Patient struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
