package appointments

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Appointment types used by the sleep follow-up workflow. Free text is
// accepted too; these are the ones the UI proposes.
const (
	TypeFirstConsultation = "premiere_consultation"
	TypePolygraphy        = "polygraphie"
	TypeTitration         = "titration"
	TypeFollowUp          = "suivi"
)

// Appointment links a doctor and a patient at a point in time.
type Appointment struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Type        string    `json:"type"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Enriched for list views.
	DoctorName  string `json:"doctor_name,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
}

// CreateRequest is the body for booking an appointment. Patients supply
// doctor_id; doctors supply patient_id.
type CreateRequest struct {
	DoctorID    string    `json:"doctor_id"`
	PatientID   string    `json:"patient_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Type        string    `json:"type"`
	Notes       string    `json:"notes"`
}

// Validate checks the booking request.
func (r *CreateRequest) Validate() error {
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		r.Type = TypeFollowUp
	}
	if r.ScheduledAt.IsZero() {
		return ErrScheduleRequired
	}
	if r.ScheduledAt.Before(time.Now()) {
		return ErrScheduleInPast
	}
	return nil
}
