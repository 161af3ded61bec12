package messaging

import "errors"

var (
	// ErrConversationNotFound covers both absent conversations and ones the
	// caller is not a participant of.
	ErrConversationNotFound = errors.New("conversation introuvable")

	// ErrRelationshipRequired is returned when messaging is attempted
	// without an active doctor-patient relationship.
	ErrRelationshipRequired = errors.New("aucune association active avec ce praticien")

	// ErrEmptyMessage is returned for blank message bodies.
	ErrEmptyMessage = errors.New("le message ne peut pas être vide")

	// ErrMessageTooLong is returned when the body exceeds the length cap.
	ErrMessageTooLong = errors.New("le message est trop long")
)
