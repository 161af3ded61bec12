package invitations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/somnolink/somnolink/internal/events"
)

const relationshipColumns = "id, doctor_id, patient_id, status, accepted_at, created_at"

// PostgresStore is a Postgres-backed implementation of Store.
type PostgresStore struct {
	db events.PgxPool
}

// NewPostgresStore creates a store backed by the given pool
func NewPostgresStore(db events.PgxPool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureActive creates or activates the relationship for a pair. The upsert
// only touches pending rows, so active and rejected rows pass through
// unchanged.
func (s *PostgresStore) EnsureActive(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error) {
	query := `
		INSERT INTO doctor_patient_relationships (id, doctor_id, patient_id, status, accepted_at, created_at)
		VALUES ($1, $2, $3, 'active', NOW(), NOW())
		ON CONFLICT (doctor_id, patient_id) DO UPDATE
		SET status = 'active', accepted_at = NOW()
		WHERE doctor_patient_relationships.status = 'pending'
		RETURNING ` + relationshipColumns

	rel, err := s.scanOne(s.db.QueryRow(ctx, query, uuid.New(), doctorID, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		// The conflicting row was already terminal. Return it as is.
		return s.GetByPair(ctx, doctorID, patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("invitations: failed to ensure active relationship: %w", err)
	}
	return rel, nil
}

// EnsurePending creates the relationship in pending status if no row exists
// for the pair.
func (s *PostgresStore) EnsurePending(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error) {
	query := `
		INSERT INTO doctor_patient_relationships (id, doctor_id, patient_id, status, created_at)
		VALUES ($1, $2, $3, 'pending', NOW())
		ON CONFLICT (doctor_id, patient_id) DO NOTHING
		RETURNING ` + relationshipColumns

	rel, err := s.scanOne(s.db.QueryRow(ctx, query, uuid.New(), doctorID, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return s.GetByPair(ctx, doctorID, patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("invitations: failed to ensure pending relationship: %w", err)
	}
	return rel, nil
}

// Transition moves a pending row addressed to doctorID into a terminal
// status. A second query distinguishes a missing row from one the state
// machine no longer allows to move.
func (s *PostgresStore) Transition(ctx context.Context, id, doctorID uuid.UUID, to string) (*Relationship, error) {
	query := `
		UPDATE doctor_patient_relationships
		SET status = $3,
		    accepted_at = CASE WHEN $3 = 'active' THEN NOW() ELSE accepted_at END
		WHERE id = $1 AND doctor_id = $2 AND status = 'pending'
		RETURNING ` + relationshipColumns

	rel, err := s.scanOne(s.db.QueryRow(ctx, query, id, doctorID, to))
	if errors.Is(err, pgx.ErrNoRows) {
		checkQuery := `
			SELECT ` + relationshipColumns + `
			FROM doctor_patient_relationships
			WHERE id = $1 AND doctor_id = $2`
		if _, checkErr := s.scanOne(s.db.QueryRow(ctx, checkQuery, id, doctorID)); checkErr == nil {
			return nil, ErrNotPending
		}
		return nil, ErrRelationshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitations: failed to transition relationship: %w", err)
	}
	return rel, nil
}

// GetByPair returns the relationship for a (doctor, patient) pair
func (s *PostgresStore) GetByPair(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM doctor_patient_relationships
		WHERE doctor_id = $1 AND patient_id = $2`

	rel, err := s.scanOne(s.db.QueryRow(ctx, query, doctorID, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRelationshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitations: failed to get relationship: %w", err)
	}
	return rel, nil
}

// ListByDoctor lists relationships addressed to a doctor. An empty status
// returns all rows.
func (s *PostgresStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string) ([]*Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM doctor_patient_relationships
		WHERE doctor_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, doctorID, status)
	if err != nil {
		return nil, fmt.Errorf("invitations: failed to list relationships by doctor: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

// ListByPatient lists relationships owned by a patient
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID uuid.UUID, status string) ([]*Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM doctor_patient_relationships
		WHERE patient_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, patientID, status)
	if err != nil {
		return nil, fmt.Errorf("invitations: failed to list relationships by patient: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *PostgresStore) scanOne(row pgx.Row) (*Relationship, error) {
	var rel Relationship
	err := row.Scan(&rel.ID, &rel.DoctorID, &rel.PatientID, &rel.Status, &rel.AcceptedAt, &rel.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (s *PostgresStore) scanAll(rows pgx.Rows) ([]*Relationship, error) {
	var out []*Relationship
	for rows.Next() {
		rel, err := s.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("invitations: failed to scan relationship: %w", err)
		}
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invitations: row iteration error: %w", err)
	}
	return out, nil
}
