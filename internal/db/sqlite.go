package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS app_snapshots (
	key        TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	nickname      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	avatar        TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
`

// SQLite stores snapshots and users in a local SQLite file. Timestamps are
// Unix milliseconds.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	conn.SetMaxOpenConns(1)

	s := &SQLite{db: conn, now: time.Now}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveSnapshot upserts the snapshot stored under key.
func (s *SQLite) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_snapshots (key, data, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, string(data), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot returns the snapshot stored under key, or nil when there is none.
func (s *SQLite) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM app_snapshots WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return []byte(data), nil
}

// Persister adapts the snapshot row under key to store.Persister.
func (s *SQLite) Persister(key string) *SnapshotPersister {
	return &SnapshotPersister{backend: s, key: key}
}

// CreateUser inserts a user. A zero ID is assigned.
func (s *SQLite) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, nickname, email, avatar, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Nickname, normalizeEmail(u.Email), u.Avatar, u.PasswordHash, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.UnixMilli(now.UnixMilli())
	u.UpdatedAt = u.CreatedAt
	return nil
}

// GetUser retrieves a user by ID. It returns nil, nil when not found.
func (s *SQLite) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanSQLiteUser(s.db.QueryRowContext(ctx,
		`SELECT id, nickname, email, avatar, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id.String()))
}

// GetUserByEmail retrieves a user by email. It returns nil, nil when not found.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return scanSQLiteUser(s.db.QueryRowContext(ctx,
		`SELECT id, nickname, email, avatar, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email))
}

func scanSQLiteUser(row *sql.Row) (*User, error) {
	var (
		u                User
		id               string
		created, updated int64
	)
	err := row.Scan(&id, &u.Nickname, &u.Email, &u.Avatar, &u.PasswordHash, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored user id %q: %w", id, err)
	}
	u.CreatedAt = time.UnixMilli(created)
	u.UpdatedAt = time.UnixMilli(updated)
	return &u, nil
}

// CheckEmailExists reports whether an account uses email.
func (s *SQLite) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, normalizeEmail(email)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

// UpdateUser saves the profile fields and password hash of an existing user.
func (s *SQLite) UpdateUser(ctx context.Context, u *User) error {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET nickname = ?, email = ?, avatar = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		u.Nickname, normalizeEmail(u.Email), u.Avatar, u.PasswordHash, now.UnixMilli(), u.ID.String(),
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, u.ID)
	}
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = time.UnixMilli(now.UnixMilli())
	return nil
}

// DeleteUser removes a user.
func (s *SQLite) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func isSQLiteUnique(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
