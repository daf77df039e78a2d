package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultSnapshotKey names the single application snapshot row.
const DefaultSnapshotKey = "default"

// ErrEmailTaken is returned when creating or updating a user would duplicate an email.
var ErrEmailTaken = errors.New("email already registered")

// ErrUserNotFound is returned when updating a user that does not exist.
var ErrUserNotFound = errors.New("user not found")

// User represents a stored account
type User struct {
	ID           uuid.UUID `json:"id"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar,omitempty"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public converts the stored account to the client-facing user, excluding the password hash.
func (u *User) Public() *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UnixMilli(),
	}
}
