package store

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/types"
)

const day = 24 * time.Hour

// Urgency windows in days until the deadline, inclusive.
const (
	urgentDays = 3
	weekDays   = 7
)

// ParseDeadline accepts RFC 3339 timestamps and date-only YYYY-MM-DD values.
// Date-only deadlines are midnight in loc.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("deadline is empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("deadline %q is not RFC 3339 or YYYY-MM-DD", s)
}

// DaysUntil returns the whole days from now to deadline, rounded up. The
// second result is false when the deadline cannot be parsed.
func DaysUntil(deadline string, now time.Time) (int, bool) {
	t, err := ParseDeadline(deadline, now.Location())
	if err != nil {
		return 0, false
	}
	return int(math.Ceil(float64(t.Sub(now)) / float64(day))), true
}

type scheduled struct {
	job      *types.JobRecord
	deadline time.Time
	days     int
}

// scheduledLocked returns active reminder jobs with a parseable deadline.
func (s *Store) scheduledLocked(now time.Time) []scheduled {
	var out []scheduled
	for _, j := range s.jobs {
		if !j.InSchedule() {
			continue
		}
		t, err := ParseDeadline(j.Position.Deadline, now.Location())
		if err != nil {
			continue
		}
		out = append(out, scheduled{
			job:      j,
			deadline: t,
			days:     int(math.Ceil(float64(t.Sub(now)) / float64(day))),
		})
	}
	return out
}

func matchesUrgency(f types.UrgencyFilter, days int) bool {
	switch f {
	case types.UrgencyUrgent:
		return days >= 0 && days <= urgentDays
	case types.UrgencyWeek:
		return days >= 0 && days <= weekDays
	case types.UrgencyOverdue:
		return days < 0
	default:
		return true
	}
}

// ScheduleJobs returns the jobs for a schedule view. The archived view lists
// archived jobs in insertion order; every other view lists active reminder
// jobs sorted by deadline.
func (s *Store) ScheduleJobs(urgency types.UrgencyFilter, event types.EventTypeFilter) ([]*types.JobRecord, error) {
	if !urgency.Valid() {
		return nil, &ValidationError{Field: "urgency", Message: "unknown urgency filter " + string(urgency)}
	}
	if !event.Valid() {
		return nil, &ValidationError{Field: "event", Message: "unknown event filter " + string(event)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*types.JobRecord{}
	if urgency == types.UrgencyArchived {
		for _, j := range s.jobs {
			if j.IsArchived && event.Matches(j.ReminderEvent) {
				out = append(out, j.Clone())
			}
		}
		return out, nil
	}

	items := s.scheduledLocked(s.now())
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].deadline.Before(items[b].deadline)
	})
	for _, it := range items {
		if matchesUrgency(urgency, it.days) && event.Matches(it.job.ReminderEvent) {
			out = append(out, it.job.Clone())
		}
	}
	return out, nil
}

// ScheduleStats counts active reminder jobs per urgency bucket.
func (s *Store) ScheduleStats() types.ScheduleStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats types.ScheduleStats
	for _, it := range s.scheduledLocked(s.now()) {
		stats.All++
		if matchesUrgency(types.UrgencyUrgent, it.days) {
			stats.Urgent++
		}
		if matchesUrgency(types.UrgencyWeek, it.days) {
			stats.Week++
		}
		if it.days < 0 {
			stats.Overdue++
		}
	}
	return stats
}

// CalendarDays returns the sorted days of a month that have an active
// reminder deadline, in the store clock's location.
func (s *Store) CalendarDays(year int, month time.Month) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seen := map[int]bool{}
	for _, it := range s.scheduledLocked(now) {
		local := it.deadline.In(now.Location())
		if local.Year() == year && local.Month() == month {
			seen[local.Day()] = true
		}
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}
