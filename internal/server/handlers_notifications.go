package server

import (
	"log"
	"net/http"
	"time"

	"github.com/jonathan/job-tracker/internal/types"
)

// notificationView is a notification as clients see it: the action handler
// is dropped and the duration resolved to milliseconds (0 means sticky).
type notificationView struct {
	ID       string         `json:"id"`
	Message  string         `json:"message"`
	Type     types.Severity `json:"type"`
	Action   *actionView    `json:"action,omitempty"`
	Duration int64          `json:"duration"`
}

type actionView struct {
	Label  string `json:"label"`
	Target string `json:"target,omitempty"`
}

func (s *Server) viewNotification(n types.Notification) notificationView {
	v := notificationView{
		ID:       n.ID,
		Message:  n.Message,
		Type:     n.Type,
		Duration: n.DurationMillis(s.toastTTL),
	}
	if n.Action != nil {
		v.Action = &actionView{Label: n.Action.Label, Target: n.Action.Target}
	}
	return v
}

func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request) {
	list := s.store.Notifications()
	views := make([]notificationView, 0, len(list))
	for _, n := range list {
		views = append(views, s.viewNotification(n))
	}
	s.jsonResponse(w, http.StatusOK, views)
}

// handleDismissNotification removes a notification. Unknown ids succeed
// because the notification may have expired already.
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	s.store.Dismiss(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleNotificationAction runs a notification's action, such as undoing a
// cancelled reminder, and dismisses it.
func (s *Server) handleNotificationAction(w http.ResponseWriter, r *http.Request) {
	action, err := s.store.InvokeAction(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, actionView{Label: action.Label, Target: action.Target})
}

// handleNotificationStream pushes new notifications as SSE "notification"
// events until the client disconnects or the store closes.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	if err := stream.open(); err != nil {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			if err := stream.notification(s.viewNotification(n)); err != nil {
				log.Printf("[sse] failed to write notification: %v", err)
				return
			}
		case <-ticker.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}
