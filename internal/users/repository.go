package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
)

// Repository stores accounts. Lookups return nil, nil when nothing matches.
// *db.DB and *db.SQLite implement it.
type Repository interface {
	CreateUser(ctx context.Context, u *db.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, u *db.User) error
}

// MemoryRepository keeps accounts in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]db.User
	now   func() time.Time
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]db.User), now: time.Now}
}

// CreateUser stores a copy of u, assigning an ID and timestamps.
func (r *MemoryRepository) CreateUser(_ context.Context, u *db.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = normalizeEmail(u.Email)
	if r.emailOwnerLocked(u.Email) != uuid.Nil {
		return db.ErrEmailTaken
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

// GetUser returns a copy of the user with id.
func (r *MemoryRepository) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByEmail returns a copy of the user with email.
func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id := r.emailOwnerLocked(normalizeEmail(email))
	if id == uuid.Nil {
		return nil, nil
	}
	u := r.users[id]
	return &u, nil
}

// CheckEmailExists reports whether an account uses email.
func (r *MemoryRepository) CheckEmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailOwnerLocked(normalizeEmail(email)) != uuid.Nil, nil
}

// UpdateUser replaces the stored user with u.
func (r *MemoryRepository) UpdateUser(_ context.Context, u *db.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok {
		return db.ErrUserNotFound
	}
	u.Email = normalizeEmail(u.Email)
	if owner := r.emailOwnerLocked(u.Email); owner != uuid.Nil && owner != u.ID {
		return db.ErrEmailTaken
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.now()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) emailOwnerLocked(email string) uuid.UUID {
	if email == "" {
		return uuid.Nil
	}
	for id, u := range r.users {
		if u.Email == email {
			return id
		}
	}
	return uuid.Nil
}
