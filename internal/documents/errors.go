package documents

import "errors"

var (
	// ErrDocumentNotFound covers absent rows and rows the caller cannot
	// read.
	ErrDocumentNotFound = errors.New("document introuvable")

	// ErrStorageDisabled is returned when no bucket is configured.
	ErrStorageDisabled = errors.New("le stockage de documents n'est pas disponible")

	// ErrDocumentTooLarge is returned for uploads above the size cap.
	ErrDocumentTooLarge = errors.New("le document est trop volumineux")

	// ErrFilenameRequired is returned for uploads without a filename.
	ErrFilenameRequired = errors.New("le nom du fichier est obligatoire")

	// ErrAccessDenied is returned when a doctor reads a patient they have
	// no active relationship with.
	ErrAccessDenied = errors.New("aucune association active avec ce patient")
)
