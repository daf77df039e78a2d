// Package store holds the application state of the job tracker: folders,
// tracked jobs, the assistant transcript and saved sessions, transient
// notifications, and the signed-in user. All access goes through a Store
// value; every mutation is persisted through an optional Persister.
package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultNotificationDuration is how long a notification stays when no duration is given.
const DefaultNotificationDuration = 3 * time.Second

const persistTimeout = 5 * time.Second

// Persister stores and retrieves the serialized snapshot.
type Persister interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error
	// Load returns the stored snapshot, or nil when none exists.
	Load(ctx context.Context) ([]byte, error)
}

// Store is the in-process application state.
type Store struct {
	mu sync.Mutex

	now            func() time.Time
	newID          func(prefix string) string
	persister      Persister
	notifyDuration time.Duration

	folders          []types.Folder
	selectedFolderID string
	jobs             []*types.JobRecord

	messages         []types.ChatMessage
	sessions         []types.ChatSession
	currentSessionID string
	pendingJob       *types.JobRecord

	user *types.User

	notifications []types.Notification
	timers        map[string]*time.Timer
	subscribers   map[int]chan types.Notification
	nextSub       int
	closed        bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation. The prefix names the entity kind.
func WithIDGenerator(newID func(prefix string) string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithPersister saves a snapshot after every mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithSeed starts the store from seed data.
func WithSeed(seed Seed) Option {
	return func(s *Store) { s.applySeed(seed) }
}

// WithNotificationDuration overrides the default notification lifetime.
func WithNotificationDuration(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.notifyDuration = d
		}
	}
}

// New creates an empty store and applies the options in order.
func New(opts ...Option) *Store {
	s := &Store{
		now:            time.Now,
		newID:          defaultID,
		notifyDuration: DefaultNotificationDuration,
		folders:        []types.Folder{},
		jobs:           []*types.JobRecord{},
		messages:       []types.ChatMessage{},
		sessions:       []types.ChatSession{},
		timers:         make(map[string]*time.Timer),
		subscribers:    make(map[int]chan types.Notification),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// changed persists the current state. Callers hold s.mu.
func (s *Store) changed() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		log.Printf("[store] failed to encode snapshot: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, data); err != nil {
		log.Printf("[store] failed to persist snapshot: %v", err)
	}
}

// recountLocked recomputes every folder's count of non-archived jobs.
func (s *Store) recountLocked() {
	counts := make(map[string]int, len(s.folders))
	for _, j := range s.jobs {
		if !j.IsArchived {
			counts[j.FolderID]++
		}
	}
	for i := range s.folders {
		s.folders[i].JobCount = counts[s.folders[i].ID]
	}
}

// SetCurrentUser records the signed-in user.
func (s *Store) SetCurrentUser(u *types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
	} else {
		cp := *u
		s.user = &cp
	}
	s.changed()
}

// ClearCurrentUser signs the user out.
func (s *Store) ClearCurrentUser() {
	s.SetCurrentUser(nil)
}

// CurrentUser returns the signed-in user, or nil.
func (s *Store) CurrentUser() *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}
