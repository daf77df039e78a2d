package types

import "time"

// Severity is the visual tone of a notification.
type Severity string

// Severity constants
const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Action is the single optional button attached to a notification.
type Action struct {
	Label string `json:"label"`
	// Target is a navigation hint for clients (e.g. "bookmark").
	Target  string `json:"target,omitempty"`
	Handler func() `json:"-"`
}

// Notification is a transient, dismissible message for the user.
type Notification struct {
	ID      string   `json:"id"`
	Message string   `json:"message"`
	Type    Severity `json:"type"`
	Action  *Action  `json:"action,omitempty"`
	// Duration nil means the default; a zero value means manual dismiss only.
	Duration *time.Duration `json:"-"`
}

// DurationMillis reports the effective duration for API clients.
func (n Notification) DurationMillis(def time.Duration) int64 {
	if n.Duration == nil {
		return def.Milliseconds()
	}
	return n.Duration.Milliseconds()
}

// Sticky returns a duration that disables automatic removal.
func Sticky() *time.Duration {
	d := time.Duration(0)
	return &d
}

// For returns a pointer to d for use as a notification duration.
func For(d time.Duration) *time.Duration {
	return &d
}
