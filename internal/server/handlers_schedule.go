package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/job-tracker/internal/types"
)

// handleSchedule lists reminder jobs filtered by ?urgency= and ?event=.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.store.ScheduleJobs(types.UrgencyFilter(q.Get("urgency")), types.EventTypeFilter(q.Get("event")))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleScheduleStats(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.ScheduleStats())
}

type calendarMonth struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []int `json:"days"`
}

// handleCalendar returns the days of ?year=&month= that carry a deadline.
// Missing parameters default to the current month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(w, &ErrBadRequest{Message: "invalid year: " + v})
			return
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			s.fail(w, &ErrBadRequest{Message: "invalid month: " + v})
			return
		}
		month = n
	}

	s.jsonResponse(w, http.StatusOK, calendarMonth{
		Year:  year,
		Month: month,
		Days:  s.store.CalendarDays(year, time.Month(month)),
	})
}
