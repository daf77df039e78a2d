package store

import (
	"time"

	"github.com/jonathan/job-tracker/internal/types"
)

const subscriberBuffer = 16

// Enqueue adds a notification and returns its id. Unless the duration is
// explicitly zero it is removed automatically after the duration (or the
// store default when unset).
func (s *Store) Enqueue(n types.Notification) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.newID("toast")
	s.notifications = append(s.notifications, n)

	d := s.notifyDuration
	if n.Duration != nil {
		d = *n.Duration
	}
	if d > 0 && !s.closed {
		id := n.ID
		s.timers[id] = time.AfterFunc(d, func() { s.Dismiss(id) })
	}

	for _, ch := range s.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
	return n.ID
}

// Notify enqueues a plain notification with the default duration.
func (s *Store) Notify(severity types.Severity, message string) string {
	return s.Enqueue(types.Notification{Type: severity, Message: message})
}

// Dismiss removes a notification now. Unknown ids are ignored since they may
// already have expired.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissLocked(id)
}

func (s *Store) dismissLocked(id string) bool {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return true
		}
	}
	return false
}

// InvokeAction runs a notification's action handler and dismisses it.
func (s *Store) InvokeAction(id string) (types.Action, error) {
	s.mu.Lock()
	var action *types.Action
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			action = s.notifications[i].Action
			break
		}
	}
	if action == nil {
		s.mu.Unlock()
		return types.Action{}, &NotFoundError{Kind: KindNotification, ID: id}
	}
	s.dismissLocked(id)
	handler := action.Handler
	result := *action
	s.mu.Unlock()

	if handler != nil {
		handler()
	}
	result.Handler = nil
	return result, nil
}

// Notifications returns the visible notifications, oldest first.
func (s *Store) Notifications() []types.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Notification{}, s.notifications...)
}

// Subscribe streams newly enqueued notifications. Slow subscribers miss
// notifications rather than block producers. Call the returned func to
// unsubscribe.
func (s *Store) Subscribe() (<-chan types.Notification, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan types.Notification, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Close stops pending notification timers and ends all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}
