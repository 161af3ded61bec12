package invitations

import "errors"

var (
	// ErrRelationshipNotFound covers both absent rows and rows the caller
	// may not touch; callers cannot distinguish, mirroring row-scoped reads
	ErrRelationshipNotFound = errors.New("demande introuvable")

	// ErrNotPending is returned when accepting/rejecting a row that already
	// reached a terminal status
	ErrNotPending = errors.New("cette demande a déjà été traitée")

	// ErrRelationshipRejected is returned when a token confirmation lands on
	// a pair the doctor previously rejected
	ErrRelationshipRejected = errors.New("cette association a été refusée")

	// ErrEmailNotConfirmed is returned when the join flow runs before the
	// email address is confirmed
	ErrEmailNotConfirmed = errors.New("confirmez votre adresse email avant de continuer")

	// ErrInvalidEmail is returned when the invitation email address is
	// malformed
	ErrInvalidEmail = errors.New("adresse email invalide")

	// ErrInvitationsDisabled is returned when a doctor emails a link while
	// their invitations are turned off
	ErrInvitationsDisabled = errors.New("les invitations sont désactivées")

	// ErrMailerUnavailable is returned when no email provider is configured
	ErrMailerUnavailable = errors.New("l'envoi d'email n'est pas disponible")
)
