package patients

import "errors"

var (
	// ErrPatientNotFound is returned when no patient profile matches
	ErrPatientNotFound = errors.New("patient introuvable")
)
