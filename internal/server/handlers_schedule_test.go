package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobIDs(jobs []types.JobRecord) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestHandleSchedule(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"all by deadline", "/schedule", []string{"job-6", "job-3", "job-1", "job-5", "job-2", "job-4"}},
		{"urgent", "/schedule?urgency=urgent", []string{"job-6", "job-3"}},
		{"week", "/schedule?urgency=week", []string{"job-6", "job-3", "job-1"}},
		{"overdue", "/schedule?urgency=overdue", []string{}},
		{"archived", "/schedule?urgency=archived", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, jobIDs(decodeBody[[]types.JobRecord](t, w)))
		})
	}
}

func TestHandleSchedule_EventFilter(t *testing.T) {
	env := newTestEnv(t)
	deadline := time.Now().Add(4 * 24 * time.Hour).Format(time.RFC3339)
	_, err := env.store.SetReminder("job-7", types.EventInterview, deadline)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/schedule?event=interview", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"job-7"}, jobIDs(decodeBody[[]types.JobRecord](t, w)))
}

func TestHandleSchedule_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/schedule?urgency=soon", "/schedule?event=party"} {
		w := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHandleScheduleStats(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/schedule/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.ScheduleStats{Urgent: 2, Week: 3, Overdue: 0, All: 6}, decodeBody[types.ScheduleStats](t, w))
}

func TestHandleCalendar(t *testing.T) {
	env := newTestEnv(t)
	deadline := time.Date(2030, time.March, 9, 12, 0, 0, 0, time.Local)
	_, err := env.store.SetReminder("job-7", types.EventToOffer, deadline.Format(time.RFC3339))
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/schedule/calendar?year=2030&month=3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	month := decodeBody[calendarMonth](t, w)
	assert.Equal(t, 2030, month.Year)
	assert.Equal(t, 3, month.Month)
	assert.Equal(t, []int{9}, month.Days)
}

func TestHandleCalendar_DefaultsToCurrentMonth(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	w := env.do(t, http.MethodGet, "/schedule/calendar", nil)

	require.Equal(t, http.StatusOK, w.Code)
	month := decodeBody[calendarMonth](t, w)
	assert.Equal(t, now.Year(), month.Year)
	assert.Equal(t, int(now.Month()), month.Month)
	assert.NotNil(t, month.Days)
}

func TestHandleCalendar_InvalidParams(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"year=abc", "year=0", "month=13", "month=0", "month=x"} {
		w := env.do(t, http.MethodGet, fmt.Sprintf("/schedule/calendar?%s", q), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
