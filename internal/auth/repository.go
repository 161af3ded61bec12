package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for user storage
type Repository interface {
	Create(ctx context.Context, user *User, confirmationHash string) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ConfirmByTokenHash(ctx context.Context, tokenHash string) (*User, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage, used by handler tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]*User // keyed by id
	byToken  map[string]string
	byEmail  map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:   make(map[string]*User),
		byToken: make(map[string]string),
		byEmail: make(map[string]string),
	}
}

// Create stores a new user in memory
func (r *InMemoryRepository) Create(ctx context.Context, user *User, confirmationHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	copied := *user
	r.users[user.ID.String()] = &copied
	r.byEmail[email] = user.ID.String()
	if confirmationHash != "" {
		r.byToken[confirmationHash] = user.ID.String()
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}

// GetByID retrieves a user by id
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// ConfirmByTokenHash marks the matching user confirmed
func (r *InMemoryRepository) ConfirmByTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[tokenHash]
	if !ok {
		return nil, ErrInvalidConfirmation
	}
	user := r.users[id]
	if user.ConfirmedAt == nil {
		now := time.Now().UTC()
		user.ConfirmedAt = &now
	}
	delete(r.byToken, tokenHash)
	copied := *user
	return &copied, nil
}
