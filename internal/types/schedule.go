package types

// UrgencyFilter narrows the schedule by time to deadline.
type UrgencyFilter string

// Urgency filter constants
const (
	UrgencyAll      UrgencyFilter = "all"
	UrgencyUrgent   UrgencyFilter = "urgent"
	UrgencyWeek     UrgencyFilter = "week"
	UrgencyOverdue  UrgencyFilter = "overdue"
	UrgencyArchived UrgencyFilter = "archived"
)

// Valid reports whether f is a known urgency filter. Empty means all.
func (f UrgencyFilter) Valid() bool {
	switch f {
	case "", UrgencyAll, UrgencyUrgent, UrgencyWeek, UrgencyOverdue, UrgencyArchived:
		return true
	}
	return false
}

// EventTypeFilter narrows the schedule by reminder event. Empty or "all" keeps everything.
type EventTypeFilter string

// EventAll keeps every reminder event.
const EventAll EventTypeFilter = "all"

// Valid reports whether f is "all", empty, or a known reminder event.
func (f EventTypeFilter) Valid() bool {
	return f == "" || f == EventAll || ReminderEvent(f).Valid()
}

// Matches reports whether a job with event e passes the filter.
func (f EventTypeFilter) Matches(e ReminderEvent) bool {
	if f == "" || f == EventAll {
		return true
	}
	return ReminderEvent(f) == e
}

// ScheduleStats counts reminder jobs per urgency bucket.
type ScheduleStats struct {
	Urgent  int `json:"urgent"`
	Week    int `json:"week"`
	Overdue int `json:"overdue"`
	All     int `json:"all"`
}

// SetReminderRequest is the payload for setting a reminder.
type SetReminderRequest struct {
	Event    ReminderEvent `json:"event" validate:"required,oneof=toApply writtenTest interview toOffer"`
	Deadline string        `json:"deadline" validate:"required"`
}

// UpdateStatusRequest is the payload for changing a job status.
type UpdateStatusRequest struct {
	Status JobStatus `json:"status" validate:"required,oneof=new inProgress offer rejected"`
}

// MoveJobRequest is the payload for moving a job to another folder.
type MoveJobRequest struct {
	FolderID string `json:"folderId" validate:"required"`
}
