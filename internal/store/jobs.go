package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
	schemadocs "github.com/jonathan/job-tracker/schemas"
)

// AddJob appends a job to an existing folder. An empty id is assigned.
func (s *Store) AddJob(job *types.JobRecord) (*types.JobRecord, error) {
	if job == nil {
		return nil, &ValidationError{Message: "job is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := job.Clone()
	if rec.ID == "" {
		rec.ID = s.newID("job")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = s.nowMillis()
	}
	if rec.Position.Status == "" {
		rec.Position.Status = types.StatusNew
	}
	ensureLists(rec)
	if s.folderIndexLocked(rec.FolderID) < 0 {
		return nil, &NotFoundError{Kind: KindFolder, ID: rec.FolderID}
	}
	if s.jobIndexLocked(rec.ID) >= 0 {
		return nil, &ConflictError{Kind: KindJob, ID: rec.ID}
	}
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	s.jobs = append(s.jobs, rec)
	s.recountLocked()
	s.changed()
	return rec.Clone(), nil
}

// UpdateJob shallow-merges patch into a job. A replacement position without
// a status keeps the current one. The merged record must still match the job
// record schema, otherwise the job is left unchanged. Clearing HasReminder
// here does not clear the deadline or event; use ClearReminder for that.
func (s *Store) UpdateJob(id string, patch types.JobPatch) (*types.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.jobLocked(id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return j.Clone(), nil
	}
	if patch.FolderID != nil && s.folderIndexLocked(*patch.FolderID) < 0 {
		return nil, &NotFoundError{Kind: KindFolder, ID: *patch.FolderID}
	}
	merged := j.Clone()
	patch.Apply(merged)
	if merged.Position.Status == "" {
		merged.Position.Status = j.Position.Status
	}
	ensureLists(merged)
	if err := validateRecord(merged); err != nil {
		return nil, err
	}
	*j = *merged
	s.recountLocked()
	s.changed()
	return j.Clone(), nil
}

// UpdateJobStatus sets a job's application status.
func (s *Store) UpdateJobStatus(id string, status types.JobStatus) (*types.JobRecord, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + string(status)}
	}
	return s.mutateJob(id, func(j *types.JobRecord) {
		j.Position.Status = status
	})
}

// MoveJobToFolder refiles a job.
func (s *Store) MoveJobToFolder(jobID, folderID string) (*types.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.jobLocked(jobID)
	if err != nil {
		return nil, err
	}
	if s.folderIndexLocked(folderID) < 0 {
		return nil, &NotFoundError{Kind: KindFolder, ID: folderID}
	}
	j.FolderID = folderID
	s.recountLocked()
	s.changed()
	return j.Clone(), nil
}

// DeleteJob removes a job.
func (s *Store) DeleteJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.jobIndexLocked(id)
	if idx < 0 {
		return &NotFoundError{Kind: KindJob, ID: id}
	}
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	s.recountLocked()
	s.changed()
	return nil
}

// ArchiveJob hides a job from folder counts and active schedule views.
func (s *Store) ArchiveJob(id string) (*types.JobRecord, error) {
	return s.mutateJob(id, func(j *types.JobRecord) {
		j.IsArchived = true
	})
}

// SetReminder arms a countdown for a job and unarchives it.
func (s *Store) SetReminder(id string, event types.ReminderEvent, deadline string) (*types.JobRecord, error) {
	if !event.Valid() {
		return nil, &ValidationError{Field: "event", Message: "unknown reminder event " + string(event)}
	}
	deadline = strings.TrimSpace(deadline)
	if _, err := ParseDeadline(deadline, s.now().Location()); err != nil {
		return nil, &ValidationError{Field: "deadline", Message: err.Error()}
	}
	return s.mutateJob(id, func(j *types.JobRecord) {
		j.HasReminder = true
		j.ReminderEvent = event
		j.Position.Deadline = deadline
		j.IsArchived = false
	})
}

// ClearReminder removes a job's reminder, event and deadline together and
// returns the previous state so callers can restore it with SetReminder.
func (s *Store) ClearReminder(id string) (types.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.jobLocked(id)
	if err != nil {
		return types.Reminder{}, err
	}
	prev := types.Reminder{
		HasReminder: j.HasReminder,
		Event:       j.ReminderEvent,
		Deadline:    j.Position.Deadline,
	}
	j.HasReminder = false
	j.ReminderEvent = ""
	j.Position.Deadline = ""
	s.changed()
	return prev, nil
}

// Job returns one job.
func (s *Store) Job(id string) (*types.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.jobLocked(id)
	if err != nil {
		return nil, err
	}
	return j.Clone(), nil
}

// Jobs returns every job, archived included, in insertion order.
func (s *Store) Jobs() []*types.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.JobRecord, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	return out
}

func (s *Store) mutateJob(id string, fn func(*types.JobRecord)) (*types.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.jobLocked(id)
	if err != nil {
		return nil, err
	}
	fn(j)
	s.recountLocked()
	s.changed()
	return j.Clone(), nil
}

func (s *Store) jobLocked(id string) (*types.JobRecord, error) {
	idx := s.jobIndexLocked(id)
	if idx < 0 {
		return nil, &NotFoundError{Kind: KindJob, ID: id}
	}
	return s.jobs[idx], nil
}

func (s *Store) jobIndexLocked(id string) int {
	for i, j := range s.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

// ensureLists keeps analysis lists non-nil so they encode as [].
// validateRecord checks a job against the schema its snapshot entry is
// validated with on load.
func validateRecord(j *types.JobRecord) error {
	doc, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", j.ID, err)
	}
	return schemas.ValidateDocument(schemadocs.JobRecord, doc)
}

func ensureLists(j *types.JobRecord) {
	if j.AIAnalysis.Responsibilities == nil {
		j.AIAnalysis.Responsibilities = []string{}
	}
	if j.AIAnalysis.Requirements == nil {
		j.AIAnalysis.Requirements = []string{}
	}
}
