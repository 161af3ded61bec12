package doctors

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a doctor profile, keyed 1:1 with an authenticated identity.
// The invitation token is the opaque secret behind shareable join links;
// regenerating it invalidates the previous link because lookups are by exact
// match.
type Doctor struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Specialty         string    `json:"specialty"`
	City              string    `json:"city"`
	InvitationToken   string    `json:"-"`
	InvitationEnabled bool      `json:"invitation_enabled"`
	CreatedAt         time.Time `json:"created_at"`
}

// DisplayName is the name shown to patients on invitation pages.
func (d *Doctor) DisplayName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}

// UpdateTokenRequest toggles invitations without regenerating the token.
type UpdateTokenRequest struct {
	Enabled bool `json:"enabled"`
}
