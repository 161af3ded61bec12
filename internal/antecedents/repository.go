package antecedents

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for antecedent storage. Mutations are
// scoped to the owning patient so a forged id can never touch another
// patient's history.
type Repository interface {
	Create(ctx context.Context, a *Antecedent) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Antecedent, error)
	Update(ctx context.Context, id, patientID uuid.UUID, req *UpsertRequest) (*Antecedent, error)
	Delete(ctx context.Context, id, patientID uuid.UUID) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*Antecedent
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[uuid.UUID]*Antecedent)}
}

// Create stores a new antecedent
func (r *InMemoryRepository) Create(ctx context.Context, a *Antecedent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *a
	r.rows[a.ID] = &copied
	return nil
}

// ListByPatient returns a patient's antecedents, newest first
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Antecedent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Antecedent{}
	for _, row := range r.rows {
		if row.PatientID == patientID {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update modifies an antecedent owned by patientID
func (r *InMemoryRepository) Update(ctx context.Context, id, patientID uuid.UUID, req *UpsertRequest) (*Antecedent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.PatientID != patientID {
		return nil, ErrAntecedentNotFound
	}
	row.Kind = req.Kind
	row.Label = req.Label
	row.Code = req.Code
	row.CodeSystem = req.CodeSystem
	row.Year = req.Year
	row.UpdatedAt = time.Now().UTC()
	copied := *row
	return &copied, nil
}

// Delete removes an antecedent owned by patientID
func (r *InMemoryRepository) Delete(ctx context.Context, id, patientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.PatientID != patientID {
		return ErrAntecedentNotFound
	}
	delete(r.rows, id)
	return nil
}
