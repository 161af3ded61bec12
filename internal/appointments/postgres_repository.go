package appointments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/somnolink/somnolink/internal/events"
)

const appointmentColumns = "id, doctor_id, patient_id, scheduled_at, type, notes, created_at"

// PostgresRepository is a Postgres-backed implementation of Repository.
type PostgresRepository struct {
	db events.PgxPool
}

// NewPostgresRepository creates a repository backed by the given pool
func NewPostgresRepository(db events.PgxPool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores a new appointment
func (r *PostgresRepository) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointments (id, doctor_id, patient_id, scheduled_at, type, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := r.db.Exec(ctx, query, a.ID, a.DoctorID, a.PatientID, a.ScheduledAt, a.Type, a.Notes)
	if err != nil {
		return fmt.Errorf("appointments: failed to create appointment: %w", err)
	}
	return nil
}

// ListByDoctor returns a doctor's appointments, soonest first
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE doctor_id = $1
		ORDER BY scheduled_at ASC`, doctorID)
}

// ListByPatient returns a patient's appointments, soonest first
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE patient_id = $1
		ORDER BY scheduled_at ASC`, patientID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to list appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]*Appointment, error) {
	out := []*Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.ScheduledAt, &a.Type, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: failed to scan appointment: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: row iteration error: %w", err)
	}
	return out, nil
}
