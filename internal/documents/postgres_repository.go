package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/somnolink/somnolink/internal/events"
)

const documentColumns = "id, patient_id, filename, content_type, size, storage_key, uploaded_by, created_at"

// PostgresRepository is a Postgres-backed implementation of Repository.
type PostgresRepository struct {
	db events.PgxPool
}

// NewPostgresRepository creates a repository backed by the given pool
func NewPostgresRepository(db events.PgxPool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores a new document row
func (r *PostgresRepository) Create(ctx context.Context, d *Document) error {
	query := `
		INSERT INTO documents (id, patient_id, filename, content_type, size, storage_key, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.Exec(ctx, query, d.ID, d.PatientID, d.Filename, d.ContentType, d.Size, d.Key, d.UploadedBy)
	if err != nil {
		return fmt.Errorf("documents: failed to create document: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's documents, newest first
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents WHERE patient_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("documents: failed to list documents: %w", err)
	}
	defer rows.Close()

	out := []*Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.PatientID, &d.Filename, &d.ContentType, &d.Size, &d.Key, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("documents: failed to scan document: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("documents: row iteration error: %w", err)
	}
	return out, nil
}

// GetForPatient loads a document scoped to its owner
func (r *PostgresRepository) GetForPatient(ctx context.Context, id, patientID uuid.UUID) (*Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents WHERE id = $1 AND patient_id = $2`

	var d Document
	err := r.db.QueryRow(ctx, query, id, patientID).
		Scan(&d.ID, &d.PatientID, &d.Filename, &d.ContentType, &d.Size, &d.Key, &d.UploadedBy, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("documents: failed to get document: %w", err)
	}
	return &d, nil
}

// Delete removes a document row scoped to its owner and returns it so the
// blob can be cleaned up.
func (r *PostgresRepository) Delete(ctx context.Context, id, patientID uuid.UUID) (*Document, error) {
	query := `
		DELETE FROM documents WHERE id = $1 AND patient_id = $2
		RETURNING ` + documentColumns

	var d Document
	err := r.db.QueryRow(ctx, query, id, patientID).
		Scan(&d.ID, &d.PatientID, &d.Filename, &d.ContentType, &d.Size, &d.Key, &d.UploadedBy, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("documents: failed to delete document: %w", err)
	}
	return &d, nil
}
