package doctors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/somnolink/somnolink/internal/events"
)

// PostgresRepository stores doctor profiles in the relational database.
type PostgresRepository struct {
	pool events.PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool events.PgxPool) *PostgresRepository {
	if pool == nil {
		panic("doctors: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const doctorColumns = `id, user_id, first_name, last_name, specialty, city, invitation_token, invitation_enabled, created_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.FirstName,
		&d.LastName,
		&d.Specialty,
		&d.City,
		&d.InvitationToken,
		&d.InvitationEnabled,
		&d.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("doctors: scan: %w", err)
	}
	return &d, nil
}

// Create inserts a new doctor profile.
func (r *PostgresRepository) Create(ctx context.Context, doctor *Doctor) error {
	query := `
		INSERT INTO doctors (id, user_id, first_name, last_name, specialty, city, invitation_token, invitation_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		doctor.ID,
		doctor.UserID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialty,
		doctor.City,
		doctor.InvitationToken,
		doctor.InvitationEnabled,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("doctors: insert: %w", err)
	}
	doctor.CreatedAt = createdAt
	return nil
}

// GetByUserID fetches the profile owned by a user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE user_id = $1`
	return scanDoctor(r.pool.QueryRow(ctx, query, userID))
}

// GetByID fetches a profile by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	return scanDoctor(r.pool.QueryRow(ctx, query, id))
}

// GetByEnabledToken resolves the token with the enabled flag checked in the
// same predicate, so disabled links fail identically to unknown ones.
func (r *PostgresRepository) GetByEnabledToken(ctx context.Context, token string) (*Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE invitation_token = $1 AND invitation_enabled = true
	`
	doctor, err := scanDoctor(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, ErrInvalidInvitation
		}
		return nil, err
	}
	return doctor, nil
}

// UpdateToken replaces the stored token and enabled flag for the owning user.
func (r *PostgresRepository) UpdateToken(ctx context.Context, userID, token string, enabled bool) (*Doctor, error) {
	query := `
		UPDATE doctors
		SET invitation_token = $2, invitation_enabled = $3
		WHERE user_id = $1
		RETURNING ` + doctorColumns
	return scanDoctor(r.pool.QueryRow(ctx, query, userID, token, enabled))
}

// Search matches registered doctors by name prefix or substring.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]*Doctor, error) {
	sql := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE (first_name || ' ' || last_name) ILIKE '%' || $1 || '%'
		ORDER BY last_name, first_name
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("doctors: search: %w", err)
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doctor)
	}
	return out, rows.Err()
}
