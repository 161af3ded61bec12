package doctors

import "errors"

var (
	// ErrDoctorNotFound is returned when no doctor profile matches
	ErrDoctorNotFound = errors.New("médecin introuvable")

	// ErrInvalidInvitation is the single error surfaced for unknown or
	// disabled invitation tokens
	ErrInvalidInvitation = errors.New("lien d'invitation invalide")
)
