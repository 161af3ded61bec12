package antecedents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/somnolink/somnolink/internal/events"
)

const antecedentColumns = "id, patient_id, kind, label, code, code_system, year, created_at, updated_at"

// PostgresRepository is a Postgres-backed implementation of Repository.
type PostgresRepository struct {
	db events.PgxPool
}

// NewPostgresRepository creates a repository backed by the given pool
func NewPostgresRepository(db events.PgxPool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores a new antecedent
func (r *PostgresRepository) Create(ctx context.Context, a *Antecedent) error {
	query := `
		INSERT INTO antecedents (id, patient_id, kind, label, code, code_system, year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := r.db.Exec(ctx, query, a.ID, a.PatientID, a.Kind, a.Label, a.Code, a.CodeSystem, a.Year)
	if err != nil {
		return fmt.Errorf("antecedents: failed to create antecedent: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's antecedents, newest first
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Antecedent, error) {
	query := `
		SELECT ` + antecedentColumns + `
		FROM antecedents WHERE patient_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("antecedents: failed to list antecedents: %w", err)
	}
	defer rows.Close()

	out := []*Antecedent{}
	for rows.Next() {
		var a Antecedent
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Kind, &a.Label, &a.Code, &a.CodeSystem, &a.Year, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("antecedents: failed to scan antecedent: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("antecedents: row iteration error: %w", err)
	}
	return out, nil
}

// Update modifies an antecedent owned by patientID
func (r *PostgresRepository) Update(ctx context.Context, id, patientID uuid.UUID, req *UpsertRequest) (*Antecedent, error) {
	query := `
		UPDATE antecedents
		SET kind = $3, label = $4, code = $5, code_system = $6, year = $7, updated_at = NOW()
		WHERE id = $1 AND patient_id = $2
		RETURNING ` + antecedentColumns

	var a Antecedent
	err := r.db.QueryRow(ctx, query, id, patientID, req.Kind, req.Label, req.Code, req.CodeSystem, req.Year).
		Scan(&a.ID, &a.PatientID, &a.Kind, &a.Label, &a.Code, &a.CodeSystem, &a.Year, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAntecedentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("antecedents: failed to update antecedent: %w", err)
	}
	return &a, nil
}

// Delete removes an antecedent owned by patientID
func (r *PostgresRepository) Delete(ctx context.Context, id, patientID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM antecedents WHERE id = $1 AND patient_id = $2`, id, patientID)
	if err != nil {
		return fmt.Errorf("antecedents: failed to delete antecedent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAntecedentNotFound
	}
	return nil
}
