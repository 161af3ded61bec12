package doctors

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for doctor profile storage
type Repository interface {
	Create(ctx context.Context, doctor *Doctor) error
	GetByUserID(ctx context.Context, userID string) (*Doctor, error)
	GetByID(ctx context.Context, id string) (*Doctor, error)
	// GetByEnabledToken resolves an invitation token, matching only doctors
	// whose invitations are currently enabled.
	GetByEnabledToken(ctx context.Context, token string) (*Doctor, error)
	UpdateToken(ctx context.Context, userID, token string, enabled bool) (*Doctor, error)
	Search(ctx context.Context, query string, limit int) ([]*Doctor, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Doctor
	byUser  map[string]string
	byToken map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*Doctor),
		byUser:  make(map[string]string),
		byToken: make(map[string]string),
	}
}

// Create stores a doctor profile in memory
func (r *InMemoryRepository) Create(ctx context.Context, doctor *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doctor.CreatedAt.IsZero() {
		doctor.CreatedAt = time.Now().UTC()
	}
	copied := *doctor
	r.byID[doctor.ID.String()] = &copied
	r.byUser[doctor.UserID.String()] = doctor.ID.String()
	r.byToken[doctor.InvitationToken] = doctor.ID.String()
	return nil
}

// GetByUserID retrieves a doctor by owning user id
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// GetByID retrieves a doctor by id
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doctor, ok := r.byID[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	copied := *doctor
	return &copied, nil
}

// GetByEnabledToken resolves an enabled invitation token
func (r *InMemoryRepository) GetByEnabledToken(ctx context.Context, token string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, ErrInvalidInvitation
	}
	doctor := r.byID[id]
	if !doctor.InvitationEnabled {
		return nil, ErrInvalidInvitation
	}
	copied := *doctor
	return &copied, nil
}

// UpdateToken replaces the stored token and enabled flag
func (r *InMemoryRepository) UpdateToken(ctx context.Context, userID, token string, enabled bool) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	doctor := r.byID[id]
	delete(r.byToken, doctor.InvitationToken)
	doctor.InvitationToken = token
	doctor.InvitationEnabled = enabled
	r.byToken[token] = id
	copied := *doctor
	return &copied, nil
}

// Search matches registered doctors by name, case-insensitively
func (r *InMemoryRepository) Search(ctx context.Context, query string, limit int) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*Doctor
	for _, doctor := range r.byID {
		if len(out) >= limit {
			break
		}
		name := strings.ToLower(doctor.FirstName + " " + doctor.LastName)
		if strings.Contains(name, q) {
			copied := *doctor
			out = append(out, &copied)
		}
	}
	return out, nil
}
