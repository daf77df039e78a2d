package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
	schemadocs "github.com/jonathan/job-tracker/schemas"
)

// handleListJobs lists jobs, optionally narrowed to one folder. Archived jobs
// are included only with includeArchived=true.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("includeArchived"))
	folderID := r.URL.Query().Get("folderId")

	if folderID != "" {
		if _, err := s.store.Folder(folderID); err != nil {
			s.fail(w, err)
			return
		}
	}

	jobs := []*types.JobRecord{}
	for _, j := range s.store.Jobs() {
		if folderID != "" && j.FolderID != folderID {
			continue
		}
		if j.IsArchived && !includeArchived {
			continue
		}
		jobs = append(jobs, j)
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

// handleCreateJob files a complete job record, such as one edited after
// extraction. The record is checked against the job record schema.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job types.JobRecord
	if err := s.decodeJSON(w, r, &job); err != nil {
		s.fail(w, err)
		return
	}

	if job.ID == "" {
		job.ID = parsing.NewJobID()
	}
	if job.CreatedAt == 0 {
		job.CreatedAt = time.Now().UnixMilli()
	}
	if job.Position.Status == "" {
		job.Position.Status = types.StatusNew
	}
	if job.AIAnalysis.Responsibilities == nil {
		job.AIAnalysis.Responsibilities = []string{}
	}
	if job.AIAnalysis.Requirements == nil {
		job.AIAnalysis.Requirements = []string{}
	}

	doc, err := json.Marshal(&job)
	if err != nil {
		s.fail(w, fmt.Errorf("failed to encode job: %w", err))
		return
	}
	if err := schemas.ValidateDocument(schemadocs.JobRecord, doc); err != nil {
		s.fail(w, err)
		return
	}

	added, err := s.store.AddJob(&job)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, added)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Job(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob shallow-merges a JobPatch.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var patch types.JobPatch
	if err := s.decodeJSON(w, r, &patch); err != nil {
		s.fail(w, err)
		return
	}
	if patch.Position != nil && patch.Position.Status != "" && !patch.Position.Status.Valid() {
		s.fail(w, &ErrBadRequest{Message: "unknown status " + string(patch.Position.Status)})
		return
	}
	if patch.Company != nil && !patch.Company.Type.Valid() {
		s.fail(w, &ErrBadRequest{Message: "unknown company type " + string(patch.Company.Type)})
		return
	}

	job, err := s.store.UpdateJob(r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.store.Notify(types.SeveritySuccess, "职位信息已更新")
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteJob(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	s.store.Notify(types.SeverityInfo, "职位已删除")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateStatusRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	job, err := s.store.UpdateJobStatus(r.PathValue("id"), req.Status)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleMoveJob(w http.ResponseWriter, r *http.Request) {
	var req types.MoveJobRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	job, err := s.store.MoveJobToFolder(r.PathValue("id"), req.FolderID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleArchiveJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.ArchiveJob(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleSetReminder(w http.ResponseWriter, r *http.Request) {
	var req types.SetReminderRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	job, err := s.store.SetReminder(r.PathValue("id"), req.Event, req.Deadline)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.store.Notify(types.SeveritySuccess, "提醒设置成功")
	s.jsonResponse(w, http.StatusOK, job)
}

// handleClearReminder cancels a reminder. The notification carries an undo
// action that restores the previous reminder.
func (s *Server) handleClearReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	prev, err := s.store.ClearReminder(id)
	if err != nil {
		s.fail(w, err)
		return
	}

	n := types.Notification{Type: types.SeverityInfo, Message: "提醒已取消"}
	if prev.HasReminder && prev.Event != "" && prev.Deadline != "" {
		n.Action = &types.Action{
			Label: "撤销",
			Handler: func() {
				if _, err := s.store.SetReminder(id, prev.Event, prev.Deadline); err != nil {
					s.store.Notify(types.SeverityError, "撤销失败")
				}
			},
		}
	}
	notificationID := s.store.Enqueue(n)

	s.jsonResponse(w, http.StatusOK, clearedReminder{Previous: prev, NotificationID: notificationID})
}

type clearedReminder struct {
	Previous       types.Reminder `json:"previous"`
	NotificationID string         `json:"notificationId"`
}
