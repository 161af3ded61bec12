package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata row for one uploaded file. The blob itself lives
// in object storage under Key.
type Document struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Key         string    `json:"-"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// maxDocumentSize caps uploads at 20 MiB, enough for polygraphy reports.
const maxDocumentSize = 20 << 20
