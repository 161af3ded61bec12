package auth

import "errors"

var (
	// ErrInvalidEmail is returned when the email address cannot be parsed
	ErrInvalidEmail = errors.New("adresse email invalide")

	// ErrWeakPassword is returned when the password is shorter than 8 characters
	ErrWeakPassword = errors.New("le mot de passe doit contenir au moins 8 caractères")

	// ErrInvalidRole is returned when the role is neither doctor nor patient
	ErrInvalidRole = errors.New("rôle invalide")

	// ErrInvalidDateOfBirth is returned when the date of birth is not YYYY-MM-DD
	ErrInvalidDateOfBirth = errors.New("date de naissance invalide")

	// ErrEmailTaken is returned when an account already exists for the email
	ErrEmailTaken = errors.New("un compte existe déjà pour cette adresse")

	// ErrInvalidCredentials is returned on a bad email/password pair
	ErrInvalidCredentials = errors.New("identifiants incorrects")

	// ErrUserNotFound is returned when no user matches
	ErrUserNotFound = errors.New("utilisateur introuvable")

	// ErrInvalidConfirmation is returned for an unknown or spent confirmation token
	ErrInvalidConfirmation = errors.New("lien de confirmation invalide ou expiré")
)
