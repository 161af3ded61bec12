package antecedents

import "errors"

var (
	// ErrAntecedentNotFound covers absent rows and rows owned by another
	// patient.
	ErrAntecedentNotFound = errors.New("antécédent introuvable")

	// ErrLabelRequired is returned for blank labels.
	ErrLabelRequired = errors.New("le libellé est obligatoire")

	// ErrInvalidKind is returned for kinds outside medical, surgical and
	// familial.
	ErrInvalidKind = errors.New("type d'antécédent invalide")

	// ErrInvalidCodeSystem is returned when a code is supplied with an
	// unknown coding system.
	ErrInvalidCodeSystem = errors.New("système de codage invalide")

	// ErrInvalidYear is returned for implausible years.
	ErrInvalidYear = errors.New("année invalide")

	// ErrAccessDenied is returned when a doctor reads a patient they have
	// no active relationship with.
	ErrAccessDenied = errors.New("aucune association active avec ce patient")
)
