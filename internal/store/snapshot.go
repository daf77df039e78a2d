package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
	schemadocs "github.com/jonathan/job-tracker/schemas"
)

// Snapshot is the persisted subset of the store.
type Snapshot struct {
	Folders          []types.Folder      `json:"folders"`
	Jobs             []types.JobRecord   `json:"jobs"`
	AIMessages       []types.ChatMessage `json:"aiMessages"`
	User             *types.User         `json:"user"`
	ChatSessions     []types.ChatSession `json:"chatSessions"`
	CurrentSessionID *string             `json:"currentSessionId"`
}

// Snapshot returns a deep copy of the persisted state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Folders:      append([]types.Folder{}, s.folders...),
		Jobs:         make([]types.JobRecord, 0, len(s.jobs)),
		AIMessages:   cloneMessages(s.messages),
		ChatSessions: make([]types.ChatSession, 0, len(s.sessions)),
	}
	for _, j := range s.jobs {
		snap.Jobs = append(snap.Jobs, *j.Clone())
	}
	for _, sess := range s.sessions {
		snap.ChatSessions = append(snap.ChatSessions, cloneSession(sess))
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.currentSessionID != "" {
		id := s.currentSessionID
		snap.CurrentSessionID = &id
	}
	return snap
}

// Restore replaces the persisted state with snap. Folder counts are
// recomputed and a dangling current session is dropped. Restore does not
// write through to the persister.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.folders = append([]types.Folder{}, snap.Folders...)
	s.jobs = make([]*types.JobRecord, 0, len(snap.Jobs))
	for i := range snap.Jobs {
		j := snap.Jobs[i].Clone()
		ensureLists(j)
		s.jobs = append(s.jobs, j)
	}
	s.messages = cloneMessages(snap.AIMessages)
	s.sessions = make([]types.ChatSession, 0, len(snap.ChatSessions))
	for _, sess := range snap.ChatSessions {
		s.sessions = append(s.sessions, cloneSession(sess))
	}
	s.user = nil
	if snap.User != nil {
		u := *snap.User
		s.user = &u
	}
	s.currentSessionID = ""
	if snap.CurrentSessionID != nil && s.sessionIndexLocked(*snap.CurrentSessionID) >= 0 {
		s.currentSessionID = *snap.CurrentSessionID
	}
	s.pendingJob = nil
	if s.folderIndexLocked(s.selectedFolderID) < 0 {
		s.selectedFolderID = ""
		if len(s.folders) > 0 {
			s.selectedFolderID = s.folders[0].ID
		}
	}
	s.recountLocked()
}

// MarshalSnapshot encodes the persisted state as indented JSON.
func (s *Store) MarshalSnapshot() ([]byte, error) {
	return json.MarshalIndent(s.Snapshot(), "", "  ")
}

// DecodeSnapshot validates data against the snapshot schema and decodes it.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if err := schemas.ValidateDocument(schemadocs.Snapshot, data); err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Load restores the state saved by the persister. It returns ErrNoSnapshot
// when there is nothing to load and a *schemas.ValidationError when the
// stored snapshot is invalid.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return ErrNoSnapshot
	}
	data, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return ErrNoSnapshot
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	s.Restore(*snap)
	return nil
}

// Flush writes the current state to the persister and reports failures.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.persister.Save(ctx, data)
}
