package antecedents

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Antecedent kinds.
const (
	KindMedical  = "medical"
	KindSurgical = "surgical"
	KindFamilial = "familial"
)

// Coding systems accepted for structured antecedents. Free-text entries
// carry no code at all.
const (
	SystemICD11 = "CIM-11"
	SystemICPC2 = "CISP-2"
)

// Antecedent is one entry of a patient's medical history. The label is what
// the patient or doctor typed; code and code_system are set when the entry
// was picked from terminology search.
type Antecedent struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	Kind       string    `json:"kind"`
	Label      string    `json:"label"`
	Code       string    `json:"code,omitempty"`
	CodeSystem string    `json:"code_system,omitempty"`
	Year       int       `json:"year,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpsertRequest is the body for creating or updating an antecedent.
type UpsertRequest struct {
	Kind       string `json:"kind"`
	Label      string `json:"label"`
	Code       string `json:"code"`
	CodeSystem string `json:"code_system"`
	Year       int    `json:"year"`
}

// Validate normalizes and checks the request.
func (r *UpsertRequest) Validate() error {
	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		return ErrLabelRequired
	}
	switch r.Kind {
	case KindMedical, KindSurgical, KindFamilial:
	default:
		return ErrInvalidKind
	}
	if r.Code != "" {
		switch r.CodeSystem {
		case SystemICD11, SystemICPC2:
		default:
			return ErrInvalidCodeSystem
		}
	}
	if r.Year != 0 && (r.Year < 1900 || r.Year > time.Now().Year()) {
		return ErrInvalidYear
	}
	return nil
}
