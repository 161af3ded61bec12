package invitations

import (
	"time"

	"github.com/google/uuid"
)

// Relationship lifecycle statuses. active and rejected are terminal: no
// operation transitions out of them.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Relationship is the join record between a doctor and a patient. It is the
// authorization link every scoped read (messages, antecedents, appointments,
// documents) checks against.
type Relationship struct {
	ID         uuid.UUID  `json:"id"`
	DoctorID   uuid.UUID  `json:"doctor_id"`
	PatientID  uuid.UUID  `json:"patient_id"`
	Status     string     `json:"status"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Active reports whether the relationship authorizes data access.
func (r *Relationship) Active() bool {
	return r.Status == StatusActive
}

// RequestAssociation is the body for the patient-initiated request path.
type RequestAssociation struct {
	DoctorID string `json:"doctor_id"`
}
