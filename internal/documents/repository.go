package documents

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the interface for document metadata storage
type Repository interface {
	Create(ctx context.Context, d *Document) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error)
	// GetForPatient loads a document only when it belongs to patientID.
	GetForPatient(ctx context.Context, id, patientID uuid.UUID) (*Document, error)
	Delete(ctx context.Context, id, patientID uuid.UUID) (*Document, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*Document
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[uuid.UUID]*Document)}
}

// Create stores a new document row
func (r *InMemoryRepository) Create(ctx context.Context, d *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *d
	r.rows[d.ID] = &copied
	return nil
}

// ListByPatient returns a patient's documents, newest first
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Document{}
	for _, row := range r.rows {
		if row.PatientID == patientID {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetForPatient loads a document scoped to its owner
func (r *InMemoryRepository) GetForPatient(ctx context.Context, id, patientID uuid.UUID) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok || row.PatientID != patientID {
		return nil, ErrDocumentNotFound
	}
	copied := *row
	return &copied, nil
}

// Delete removes a document row scoped to its owner
func (r *InMemoryRepository) Delete(ctx context.Context, id, patientID uuid.UUID) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.PatientID != patientID {
		return nil, ErrDocumentNotFound
	}
	delete(r.rows, id)
	return row, nil
}
