package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// sequentialIDs returns deterministic ids of the form prefix-tN, which never
// collide with seeded ids.
func sequentialIDs() func(string) string {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-t%d", prefix, n)
	}
}

func newSeeded(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
		WithSeed(DefaultSeed(testNow)),
	}
	s := New(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s
}

type memPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func (m *memPersister) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memPersister) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func folderCounts(s *Store) map[string]int {
	out := map[string]int{}
	for _, f := range s.Folders() {
		out[f.ID] = f.JobCount
	}
	return out
}

func newJob(id, folderID string) *types.JobRecord {
	return &types.JobRecord{
		ID:       id,
		FolderID: folderID,
		Company:  types.Company{Name: "美团", Type: types.CompanyInternet},
		Position: types.Position{Title: "后端工程师", Status: types.StatusNew},
	}
}

func TestSeed_CountsDerived(t *testing.T) {
	s := newSeeded(t)

	assert.Equal(t, map[string]int{"folder-1": 3, "folder-2": 2, "folder-3": 2}, folderCounts(s))
	assert.Equal(t, "folder-1", s.SelectedFolderID())
	assert.Len(t, s.Jobs(), 7)
	assert.Len(t, s.Messages(), 2)
}

func TestAddFolder(t *testing.T) {
	s := newSeeded(t)

	f, err := s.AddFolder("  央企  ", types.ColorLavender)
	require.NoError(t, err)
	assert.Equal(t, "folder-t1", f.ID)
	assert.Equal(t, "央企", f.Name)
	assert.Equal(t, 0, f.JobCount)
	assert.Len(t, s.Folders(), 4)

	_, err = s.AddFolder(" ", types.ColorMint)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = s.AddFolder("x", "green")
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "color", verr.Field)
}

func TestDeleteFolder_ReassignsToFirstRemaining(t *testing.T) {
	s := newSeeded(t)

	target, err := s.DeleteFolder("folder-1")
	require.NoError(t, err)
	assert.Equal(t, "folder-2", target)

	assert.Equal(t, map[string]int{"folder-2": 5, "folder-3": 2}, folderCounts(s))
	assert.Equal(t, "folder-2", s.SelectedFolderID())
	job, err := s.Job("job-1")
	require.NoError(t, err)
	assert.Equal(t, "folder-2", job.FolderID)
}

func TestDeleteFolder_KeepsOtherSelection(t *testing.T) {
	s := newSeeded(t)
	require.NoError(t, s.SelectFolder("folder-3"))

	_, err := s.DeleteFolder("folder-2")
	require.NoError(t, err)
	assert.Equal(t, "folder-3", s.SelectedFolderID())
	assert.Equal(t, map[string]int{"folder-1": 5, "folder-3": 2}, folderCounts(s))
}

func TestDeleteFolder_LastFolderAndMissing(t *testing.T) {
	s := newSeeded(t)
	_, err := s.DeleteFolder("folder-1")
	require.NoError(t, err)
	_, err = s.DeleteFolder("folder-2")
	require.NoError(t, err)

	_, err = s.DeleteFolder("folder-3")
	assert.ErrorIs(t, err, ErrLastFolder)
	assert.Len(t, s.Folders(), 1)
	assert.Equal(t, 7, folderCounts(s)["folder-3"])

	_, err = s.DeleteFolder("nope")
	assert.True(t, IsNotFound(err))
}

func TestDeleteFolder_AfterAddingSecondFolder(t *testing.T) {
	s := New(
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
		WithSeed(Seed{
			Folders: []types.Folder{{ID: "folder-1", Name: "默认", Color: types.ColorBlue}},
			Jobs: []types.JobRecord{
				{ID: "job-1", FolderID: "folder-1", Company: types.Company{Name: "甲", Type: types.CompanyInternet}, Position: types.Position{Title: "前端", Location: "上海", Status: types.StatusNew}},
				{ID: "job-2", FolderID: "folder-1", Company: types.Company{Name: "乙", Type: types.CompanyOther}, Position: types.Position{Title: "后端", Status: types.StatusNew}, HasReminder: true},
			},
		}),
	)
	t.Cleanup(s.Close)

	added, err := s.AddFolder("测试", types.ColorMint)
	require.NoError(t, err)

	target, err := s.DeleteFolder("folder-1")
	require.NoError(t, err)
	assert.Equal(t, added.ID, target)
	assert.Equal(t, map[string]int{added.ID: 2}, folderCounts(s))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, added.ID, jobs[0].FolderID)
	assert.Equal(t, "甲", jobs[0].Company.Name)
	assert.Equal(t, "上海", jobs[0].Position.Location)
	assert.Equal(t, "job-2", jobs[1].ID)
	assert.True(t, jobs[1].HasReminder)
}

func TestRenameFolder(t *testing.T) {
	s := newSeeded(t)

	require.NoError(t, s.RenameFolder("folder-2", "外资企业"))
	f, err := s.Folder("folder-2")
	require.NoError(t, err)
	assert.Equal(t, "外资企业", f.Name)
	assert.Equal(t, 2, f.JobCount)

	assert.True(t, IsNotFound(s.RenameFolder("nope", "x")))
}

func TestFolderJobs_ExcludesArchived(t *testing.T) {
	s := newSeeded(t)
	_, err := s.ArchiveJob("job-2")
	require.NoError(t, err)

	jobs, err := s.FolderJobs("folder-1")
	require.NoError(t, err)
	ids := []string{}
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"job-1", "job-3"}, ids)
	assert.Equal(t, 2, folderCounts(s)["folder-1"])
}

func TestAddJob(t *testing.T) {
	s := newSeeded(t)

	added, err := s.AddJob(newJob("job-new", "folder-2"))
	require.NoError(t, err)
	assert.Equal(t, testNow.UnixMilli(), added.CreatedAt)
	assert.NotNil(t, added.AIAnalysis.Responsibilities)
	assert.Equal(t, 3, folderCounts(s)["folder-2"])

	_, err = s.AddJob(newJob("job-new", "folder-2"))
	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))

	_, err = s.AddJob(newJob("job-x", "folder-404"))
	assert.True(t, IsNotFound(err))
	assert.Len(t, s.Jobs(), 8)
}

func TestAddJob_AssignsID(t *testing.T) {
	s := newSeeded(t)
	added, err := s.AddJob(newJob("", "folder-1"))
	require.NoError(t, err)
	assert.Equal(t, "job-t1", added.ID)
}

func TestAddJob_CallerCopyIsolated(t *testing.T) {
	s := newSeeded(t)
	job := newJob("job-iso", "folder-1")
	job.AIAnalysis.Requirements = []string{"Go"}
	_, err := s.AddJob(job)
	require.NoError(t, err)

	job.AIAnalysis.Requirements[0] = "mutated"
	stored, err := s.Job("job-iso")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, stored.AIAnalysis.Requirements)
}

func TestUpdateJob(t *testing.T) {
	s := newSeeded(t)
	before, err := s.Job("job-1")
	require.NoError(t, err)

	same, err := s.UpdateJob("job-1", types.JobPatch{})
	require.NoError(t, err)
	assert.Equal(t, before, same)

	link := "https://example.com/apply"
	folder := "folder-3"
	updated, err := s.UpdateJob("job-1", types.JobPatch{ApplyLink: &link, FolderID: &folder})
	require.NoError(t, err)
	assert.Equal(t, link, updated.ApplyLink)
	assert.Equal(t, before.Position, updated.Position)
	assert.Equal(t, map[string]int{"folder-1": 2, "folder-2": 2, "folder-3": 3}, folderCounts(s))

	_, err = s.UpdateJob("nope", types.JobPatch{ApplyLink: &link})
	assert.True(t, IsNotFound(err))

	missing := "folder-404"
	_, err = s.UpdateJob("job-1", types.JobPatch{FolderID: &missing})
	assert.True(t, IsNotFound(err))
}

func TestUpdateJob_PositionWithoutStatusKeepsStatus(t *testing.T) {
	s := newSeeded(t)

	updated, err := s.UpdateJob("job-1", types.JobPatch{Position: &types.Position{Title: "改名"}})
	require.NoError(t, err)
	assert.Equal(t, "改名", updated.Position.Title)
	assert.Equal(t, types.StatusInProgress, updated.Position.Status)
	assert.Empty(t, updated.Position.Salary)
}

func TestUpdateJob_RejectsRecordOutsideSchema(t *testing.T) {
	bogusEvent := types.ReminderEvent("party")

	tests := []struct {
		name  string
		patch types.JobPatch
	}{
		{"unknown status", types.JobPatch{Position: &types.Position{Title: "x", Status: "hired"}}},
		{"unknown company type", types.JobPatch{Company: &types.Company{Name: "x", Type: "startup"}}},
		{"empty company type", types.JobPatch{Company: &types.Company{Name: "x"}}},
		{"unknown reminder event", types.JobPatch{ReminderEvent: &bogusEvent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeeded(t)
			before, err := s.Job("job-1")
			require.NoError(t, err)

			_, err = s.UpdateJob("job-1", tt.patch)
			var verr *schemas.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)

			after, err := s.Job("job-1")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestAddJob_RejectsRecordOutsideSchema(t *testing.T) {
	s := newSeeded(t)
	job := newJob("job-bad", "folder-1")
	job.Company.Type = "startup"

	_, err := s.AddJob(job)
	var verr *schemas.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, s.Jobs(), 7)
}

func TestUpdateJob_ClearingReminderDoesNotCascade(t *testing.T) {
	s := newSeeded(t)
	off := false

	updated, err := s.UpdateJob("job-1", types.JobPatch{HasReminder: &off})
	require.NoError(t, err)
	assert.False(t, updated.HasReminder)
	assert.NotEmpty(t, updated.Position.Deadline)
}

func TestUpdateJobStatus(t *testing.T) {
	s := newSeeded(t)

	updated, err := s.UpdateJobStatus("job-2", types.StatusOffer)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOffer, updated.Position.Status)

	_, err = s.UpdateJobStatus("job-2", "hired")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestMoveJobToFolder(t *testing.T) {
	s := newSeeded(t)

	moved, err := s.MoveJobToFolder("job-4", "folder-3")
	require.NoError(t, err)
	assert.Equal(t, "folder-3", moved.FolderID)
	assert.Equal(t, map[string]int{"folder-1": 3, "folder-2": 1, "folder-3": 3}, folderCounts(s))

	_, err = s.MoveJobToFolder("job-4", "folder-404")
	assert.True(t, IsNotFound(err))
	_, err = s.MoveJobToFolder("job-404", "folder-1")
	assert.True(t, IsNotFound(err))
}

func TestDeleteJob(t *testing.T) {
	s := newSeeded(t)

	require.NoError(t, s.DeleteJob("job-6"))
	assert.Equal(t, 1, folderCounts(s)["folder-3"])
	_, err := s.Job("job-6")
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(s.DeleteJob("job-6")))
}

func TestSetAndClearReminder(t *testing.T) {
	s := newSeeded(t)
	_, err := s.ArchiveJob("job-7")
	require.NoError(t, err)
	assert.Equal(t, 1, folderCounts(s)["folder-3"])

	job, err := s.SetReminder("job-7", types.EventInterview, "2025-03-12")
	require.NoError(t, err)
	assert.True(t, job.HasReminder)
	assert.False(t, job.IsArchived)
	assert.Equal(t, types.EventInterview, job.ReminderEvent)
	assert.Equal(t, "2025-03-12", job.Position.Deadline)
	assert.True(t, job.InSchedule())
	assert.Equal(t, 2, folderCounts(s)["folder-3"])

	prev, err := s.ClearReminder("job-7")
	require.NoError(t, err)
	assert.Equal(t, types.Reminder{HasReminder: true, Event: types.EventInterview, Deadline: "2025-03-12"}, prev)

	cleared, err := s.Job("job-7")
	require.NoError(t, err)
	assert.False(t, cleared.HasReminder)
	assert.Empty(t, cleared.ReminderEvent)
	assert.Empty(t, cleared.Position.Deadline)

	// Undo restores the exact previous state.
	restored, err := s.SetReminder("job-7", prev.Event, prev.Deadline)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", restored.Position.Deadline)
}

func TestSetReminder_Validation(t *testing.T) {
	s := newSeeded(t)
	var verr *ValidationError

	_, err := s.SetReminder("job-1", "party", "2025-03-12")
	assert.True(t, errors.As(err, &verr))

	_, err = s.SetReminder("job-1", types.EventToApply, "next tuesday")
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "deadline", verr.Field)

	_, err = s.SetReminder("job-404", types.EventToApply, "2025-03-12")
	assert.True(t, IsNotFound(err))

	_, err = s.ClearReminder("job-404")
	assert.True(t, IsNotFound(err))
}

func TestMutationsPersist(t *testing.T) {
	p := &memPersister{}
	s := newSeeded(t, WithPersister(p))

	_, err := s.AddFolder("新", types.ColorCoral)
	require.NoError(t, err)
	_, err = s.ArchiveJob("job-1")
	require.NoError(t, err)

	assert.Equal(t, 2, p.saves)
	snap, err := DecodeSnapshot(p.data)
	require.NoError(t, err)
	assert.Len(t, snap.Folders, 4)
	assert.True(t, snap.Jobs[0].IsArchived)
}

func TestPersistFailureIsNotSurfaced(t *testing.T) {
	p := &memPersister{err: errors.New("disk full")}
	s := newSeeded(t, WithPersister(p))

	_, err := s.AddFolder("新", types.ColorCoral)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.saves)
	assert.Error(t, s.Flush(context.Background()))
}

func TestCurrentUser(t *testing.T) {
	s := newSeeded(t)
	assert.Nil(t, s.CurrentUser())

	u := &types.User{Nickname: "小明", Email: "a@b.com", CreatedAt: 1}
	s.SetCurrentUser(u)
	u.Nickname = "mutated"
	assert.Equal(t, "小明", s.CurrentUser().Nickname)

	s.ClearCurrentUser()
	assert.Nil(t, s.CurrentUser())
}

func TestConcurrentMutations(t *testing.T) {
	s := newSeeded(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddJob(newJob(fmt.Sprintf("job-c%d", i), "folder-2"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 22, folderCounts(s)["folder-2"])
}
