package store

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultSessionTitle names a session with nothing to derive a title from.
const DefaultSessionTitle = "新对话"

const maxTitleRunes = 20

// AddMessage appends to the live transcript and mirrors it into the current
// session. Missing ids and timestamps are filled in.
func (s *Store) AddMessage(msg types.ChatMessage) types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = s.newID("msg")
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = s.nowMillis()
	}
	msg = cloneMessage(msg)
	s.messages = append(s.messages, msg)
	s.mirrorLocked()
	s.changed()
	return cloneMessage(msg)
}

// ClearMessages empties the live transcript. Saved sessions are untouched.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []types.ChatMessage{}
	s.changed()
}

// HideMessage marks a transcript message hidden.
func (s *Store) HideMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Hidden = true
			s.mirrorLocked()
			s.changed()
			return nil
		}
	}
	return &NotFoundError{Kind: KindMessage, ID: id}
}

// Messages returns the live transcript, hidden messages included.
func (s *Store) Messages() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.messages)
}

// VisibleMessages returns the live transcript without hidden messages.
func (s *Store) VisibleMessages() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []types.ChatMessage{}
	for _, m := range s.messages {
		if !m.Hidden {
			out = append(out, cloneMessage(m))
		}
	}
	return out
}

// AddChatSession prepends a session and makes it current.
func (s *Store) AddChatSession(session types.ChatSession) types.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = s.newID("session")
	}
	if session.Title == "" {
		session.Title = DefaultSessionTitle
	}
	if session.UpdatedAt == 0 {
		session.UpdatedAt = s.nowMillis()
	}
	session.Messages = cloneMessages(session.Messages)
	s.sessions = append([]types.ChatSession{session}, s.sessions...)
	s.currentSessionID = session.ID
	s.changed()
	return cloneSession(session)
}

// NewSession saves the live transcript into the current session (if any),
// then starts an empty session and makes it current.
func (s *Store) NewSession() types.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mirrorLocked()
	session := types.ChatSession{
		ID:        s.newID("session"),
		Title:     DefaultSessionTitle,
		Messages:  []types.ChatMessage{},
		UpdatedAt: s.nowMillis(),
	}
	s.sessions = append([]types.ChatSession{session}, s.sessions...)
	s.currentSessionID = session.ID
	s.messages = []types.ChatMessage{}
	s.pendingJob = nil
	s.changed()
	return cloneSession(session)
}

// LoadSession replaces the live transcript with a saved session's messages.
func (s *Store) LoadSession(id string) (types.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sessionIndexLocked(id)
	if idx < 0 {
		return types.ChatSession{}, &NotFoundError{Kind: KindSession, ID: id}
	}
	s.currentSessionID = id
	s.messages = cloneMessages(s.sessions[idx].Messages)
	s.pendingJob = nil
	s.changed()
	return cloneSession(s.sessions[idx]), nil
}

// DeleteSession removes a saved session. Deleting the current session also
// empties the live transcript.
func (s *Store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sessionIndexLocked(id)
	if idx < 0 {
		return &NotFoundError{Kind: KindSession, ID: id}
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.currentSessionID == id {
		s.currentSessionID = ""
		s.messages = []types.ChatMessage{}
		s.pendingJob = nil
	}
	s.changed()
	return nil
}

// UpdateChatSession applies a patch to a session and bumps its updatedAt.
func (s *Store) UpdateChatSession(id string, patch types.SessionPatch) (types.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sessionIndexLocked(id)
	if idx < 0 {
		return types.ChatSession{}, &NotFoundError{Kind: KindSession, ID: id}
	}
	if patch.Title != nil {
		s.sessions[idx].Title = *patch.Title
	}
	s.sessions[idx].UpdatedAt = s.nowMillis()
	s.changed()
	return cloneSession(s.sessions[idx]), nil
}

// SetCurrentSession points at a saved session without touching the
// transcript. An empty id clears the pointer.
func (s *Store) SetCurrentSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.sessionIndexLocked(id) < 0 {
		return &NotFoundError{Kind: KindSession, ID: id}
	}
	s.currentSessionID = id
	s.changed()
	return nil
}

// CurrentSessionID returns the current session, or "".
func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSessionID
}

// Sessions returns saved sessions, newest first.
func (s *Store) Sessions() []types.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}
	return out
}

// Session returns one saved session.
func (s *Store) Session(id string) (types.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sessionIndexLocked(id)
	if idx < 0 {
		return types.ChatSession{}, &NotFoundError{Kind: KindSession, ID: id}
	}
	return cloneSession(s.sessions[idx]), nil
}

// SetPendingJob records a parsed job awaiting folder confirmation.
func (s *Store) SetPendingJob(job *types.JobRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingJob = job.Clone()
}

// PendingJob returns the job awaiting confirmation, or nil.
func (s *Store) PendingJob() *types.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingJob.Clone()
}

// ClearPendingJob drops the job awaiting confirmation.
func (s *Store) ClearPendingJob() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingJob = nil
}

// DeriveSessionTitle picks a title from a transcript: the first parsed job's
// company and position, else the first user text, else DefaultSessionTitle.
func DeriveSessionTitle(messages []types.ChatMessage) string {
	for _, m := range messages {
		if m.ParsedJob == nil {
			continue
		}
		title := strings.TrimSpace(m.ParsedJob.Company.Name + " " + m.ParsedJob.Position.Title)
		if title != "" {
			return truncateTitle(title)
		}
	}
	for _, m := range messages {
		if m.Type == types.MessageUser && strings.TrimSpace(m.Content) != "" {
			return truncateTitle(strings.TrimSpace(m.Content))
		}
	}
	return DefaultSessionTitle
}

func truncateTitle(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleRunes {
		return s
	}
	return string([]rune(s)[:maxTitleRunes]) + "..."
}

// mirrorLocked copies the transcript into the current session.
func (s *Store) mirrorLocked() {
	if s.currentSessionID == "" {
		return
	}
	idx := s.sessionIndexLocked(s.currentSessionID)
	if idx < 0 {
		return
	}
	s.sessions[idx].Messages = cloneMessages(s.messages)
	s.sessions[idx].UpdatedAt = s.nowMillis()
}

func (s *Store) sessionIndexLocked(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneMessage(m types.ChatMessage) types.ChatMessage {
	m.ParsedJob = m.ParsedJob.Clone()
	return m
}

func cloneMessages(msgs []types.ChatMessage) []types.ChatMessage {
	out := make([]types.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, cloneMessage(m))
	}
	return out
}

func cloneSession(sess types.ChatSession) types.ChatSession {
	sess.Messages = cloneMessages(sess.Messages)
	return sess
}
