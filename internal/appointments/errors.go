package appointments

import "errors"

var (
	// ErrScheduleRequired is returned when scheduled_at is missing.
	ErrScheduleRequired = errors.New("la date du rendez-vous est obligatoire")

	// ErrScheduleInPast is returned for bookings in the past.
	ErrScheduleInPast = errors.New("la date du rendez-vous est déjà passée")

	// ErrRelationshipRequired is returned when booking without an active
	// doctor-patient relationship.
	ErrRelationshipRequired = errors.New("aucune association active avec ce praticien")
)
