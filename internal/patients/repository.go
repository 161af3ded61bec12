package patients

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for patient profile storage
type Repository interface {
	// Ensure creates the profile if absent and returns the stored row either
	// way. Implementations must guarantee at most one row per user.
	Ensure(ctx context.Context, patient *Patient) (*Patient, error)
	GetByUserID(ctx context.Context, userID string) (*Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*Patient
	byUser map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:   make(map[string]*Patient),
		byUser: make(map[string]string),
	}
}

// Ensure creates the profile if absent, returning the stored row
func (r *InMemoryRepository) Ensure(ctx context.Context, patient *Patient) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.byUser[patient.UserID.String()]; exists {
		copied := *r.byID[id]
		return &copied, nil
	}
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now().UTC()
	}
	copied := *patient
	r.byID[patient.ID.String()] = &copied
	r.byUser[patient.UserID.String()] = patient.ID.String()
	result := copied
	return &result, nil
}

// GetByUserID retrieves a patient by owning user id
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, ErrPatientNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// GetByID retrieves a patient by id
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patient, ok := r.byID[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	copied := *patient
	return &copied, nil
}
