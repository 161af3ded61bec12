package appointments

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the interface for appointment storage
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[uuid.UUID]*Appointment)}
}

// Create stores a new appointment
func (r *InMemoryRepository) Create(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *a
	r.rows[a.ID] = &copied
	return nil
}

// ListByDoctor returns a doctor's appointments, soonest first
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.DoctorID == doctorID }), nil
}

// ListByPatient returns a patient's appointments, soonest first
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *InMemoryRepository) list(match func(*Appointment) bool) []*Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Appointment{}
	for _, row := range r.rows {
		if match(row) {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}
