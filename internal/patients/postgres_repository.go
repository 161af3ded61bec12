package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/somnolink/somnolink/internal/events"
)

// PostgresRepository stores patient profiles in the relational database.
type PostgresRepository struct {
	pool events.PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool events.PgxPool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const patientColumns = `id, user_id, first_name, last_name, date_of_birth, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.DateOfBirth,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: scan: %w", err)
	}
	return &p, nil
}

// Ensure creates the profile if absent. The unique index on user_id plus
// ON CONFLICT DO NOTHING makes concurrent double-confirmation safe: exactly
// one row wins and the follow-up select returns it for both callers.
func (r *PostgresRepository) Ensure(ctx context.Context, patient *Patient) (*Patient, error) {
	insert := `
		INSERT INTO patients (id, user_id, first_name, last_name, date_of_birth)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insert,
		patient.ID,
		patient.UserID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
	); err != nil {
		return nil, fmt.Errorf("patients: ensure insert: %w", err)
	}
	return r.GetByUserID(ctx, patient.UserID.String())
}

// GetByUserID fetches the profile owned by a user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE user_id = $1`
	return scanPatient(r.pool.QueryRow(ctx, query, userID))
}

// GetByID fetches a profile by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return scanPatient(r.pool.QueryRow(ctx, query, id))
}
