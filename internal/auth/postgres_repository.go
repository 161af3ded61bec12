package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/somnolink/somnolink/internal/events"
)

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	pool events.PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool events.PgxPool) *PostgresRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row. A unique violation on the email maps to
// ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *User, confirmationHash string) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name, date_of_birth, confirmation_token_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at
	`
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.FirstName,
		user.LastName,
		user.DateOfBirth,
		confirmationHash,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("auth: insert user: %w", err)
	}
	user.CreatedAt = createdAt
	return nil
}

const userColumns = `id, email, role, first_name, last_name, date_of_birth, confirmed_at, created_at, password_hash`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.DateOfBirth,
		&user.ConfirmedAt,
		&user.CreatedAt,
		&user.PasswordHash,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: scan user: %w", err)
	}
	return &user, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

// GetByID fetches a user by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// ConfirmByTokenHash marks the matching user confirmed and spends the token.
// Unknown tokens map to ErrInvalidConfirmation.
func (r *PostgresRepository) ConfirmByTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	query := `
		UPDATE users
		SET confirmed_at = COALESCE(confirmed_at, now()),
			confirmation_token_hash = NULL
		WHERE confirmation_token_hash = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidConfirmation
		}
		return nil, err
	}
	return user, nil
}
