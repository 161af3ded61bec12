package invitations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for relationship storage. Implementations
// guarantee at most one row per (doctor, patient) pair.
type Store interface {
	// EnsureActive is the token path: creates the relationship directly in
	// active status, or activates an existing pending row. A rejected row is
	// returned unchanged — terminal statuses are never overwritten.
	EnsureActive(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error)
	// EnsurePending is the request path: creates a pending row, or returns
	// the existing row unchanged whatever its status.
	EnsurePending(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error)
	// Transition moves a pending row to active or rejected, only when
	// doctorID is the addressed doctor. accepted_at is stamped on active.
	Transition(ctx context.Context, id, doctorID uuid.UUID, to string) (*Relationship, error)
	GetByPair(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string) ([]*Relationship, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string) ([]*Relationship, error)
}

// InMemoryStore is a stub implementation of Store using in-memory storage
type InMemoryStore struct {
	mu   sync.RWMutex
	rows map[string]*Relationship // keyed by doctorID|patientID
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: make(map[string]*Relationship)}
}

func pairKey(doctorID, patientID uuid.UUID) string {
	return doctorID.String() + "|" + patientID.String()
}

// EnsureActive implements the token path
func (s *InMemoryStore) EnsureActive(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(doctorID, patientID)
	now := time.Now().UTC()
	if row, ok := s.rows[key]; ok {
		if row.Status == StatusPending {
			row.Status = StatusActive
			row.AcceptedAt = &now
		}
		copied := *row
		return &copied, nil
	}
	row := &Relationship{
		ID:         uuid.New(),
		DoctorID:   doctorID,
		PatientID:  patientID,
		Status:     StatusActive,
		AcceptedAt: &now,
		CreatedAt:  now,
	}
	s.rows[key] = row
	copied := *row
	return &copied, nil
}

// EnsurePending implements the request path
func (s *InMemoryStore) EnsurePending(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(doctorID, patientID)
	if row, ok := s.rows[key]; ok {
		copied := *row
		return &copied, nil
	}
	row := &Relationship{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.rows[key] = row
	copied := *row
	return &copied, nil
}

// Transition moves a pending row to a terminal status
func (s *InMemoryStore) Transition(ctx context.Context, id, doctorID uuid.UUID, to string) (*Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID != id {
			continue
		}
		if row.DoctorID != doctorID {
			return nil, ErrRelationshipNotFound
		}
		if row.Status != StatusPending {
			return nil, ErrNotPending
		}
		row.Status = to
		if to == StatusActive {
			now := time.Now().UTC()
			row.AcceptedAt = &now
		}
		copied := *row
		return &copied, nil
	}
	return nil, ErrRelationshipNotFound
}

// GetByPair returns the row for a pair
func (s *InMemoryStore) GetByPair(ctx context.Context, doctorID, patientID uuid.UUID) (*Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[pairKey(doctorID, patientID)]
	if !ok {
		return nil, ErrRelationshipNotFound
	}
	copied := *row
	return &copied, nil
}

// ListByDoctor lists rows addressed to a doctor, optionally filtered by status
func (s *InMemoryStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string) ([]*Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Relationship
	for _, row := range s.rows {
		if row.DoctorID != doctorID {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	return out, nil
}

// ListByPatient lists rows owned by a patient, optionally filtered by status
func (s *InMemoryStore) ListByPatient(ctx context.Context, patientID uuid.UUID, status string) ([]*Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Relationship
	for _, row := range s.rows {
		if row.PatientID != patientID {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	return out, nil
}
