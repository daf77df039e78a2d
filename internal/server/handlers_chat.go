package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/job-tracker/internal/assistant"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/types"
)

type chatState struct {
	Messages         []types.ChatMessage `json:"messages"`
	PendingJob       *types.JobRecord    `json:"pendingJob,omitempty"`
	CurrentSessionID string              `json:"currentSessionId,omitempty"`
}

// handleListMessages returns the live transcript. Hidden messages are
// included only with all=true.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	msgs := s.store.VisibleMessages()
	if all {
		msgs = s.store.Messages()
	}
	s.jsonResponse(w, http.StatusOK, chatState{
		Messages:         msgs,
		PendingJob:       s.store.PendingJob(),
		CurrentSessionID: s.store.CurrentSessionID(),
	})
}

// handleSendMessage posts to the assistant and returns its reply.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req types.SendMessageRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	image, err := parsing.DecodeImage(req.Image)
	if err != nil {
		s.fail(w, &ErrBadRequest{Message: err.Error()})
		return
	}

	reply, err := s.assistant.Send(r.Context(), req.Content, image)
	if err != nil {
		if !errors.Is(err, assistant.ErrEmptyInput) {
			s.store.Notify(types.SeverityError, "发送失败，请重试")
		}
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reply)
}

func (s *Server) handleClearMessages(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearMessages()
	w.WriteHeader(http.StatusNoContent)
}

// handleHideMessage dismisses a parsed-job card along with the pending job.
func (s *Server) handleHideMessage(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Dismiss(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConfirmPending files the pending parsed job into a folder.
func (s *Server) handleConfirmPending(w http.ResponseWriter, r *http.Request) {
	var req types.ConfirmJobRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	job, err := s.assistant.ConfirmAdd(req.FolderID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

type sessionList struct {
	Sessions         []types.ChatSession `json:"sessions"`
	CurrentSessionID string              `json:"currentSessionId,omitempty"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, sessionList{
		Sessions:         s.store.Sessions(),
		CurrentSessionID: s.store.CurrentSessionID(),
	})
}

func (s *Server) handleNewSession(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusCreated, s.store.NewSession())
}

func (s *Server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.LoadSession(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch types.SessionPatch
	if err := s.decodeJSON(w, r, &patch); err != nil {
		s.fail(w, err)
		return
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			s.fail(w, &ErrBadRequest{Message: "title cannot be empty"})
			return
		}
		patch.Title = &title
	}

	session, err := s.store.UpdateChatSession(r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
