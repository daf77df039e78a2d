package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/prompts"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
)

// BookmarkTarget is the navigation hint attached to "added" notifications.
const BookmarkTarget = "bookmark"

var (
	// ErrEmptyInput is returned by Send when there is neither text nor image.
	ErrEmptyInput = errors.New("message has no text or image")
	// ErrNoPendingJob is returned by ConfirmAdd when nothing awaits confirmation.
	ErrNoPendingJob = errors.New("no parsed job awaiting confirmation")
)

// Extractor turns a posting into a job record. *parsing.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, text string, image []byte) *types.JobRecord
}

// Service runs the assistant conversation against the store.
type Service struct {
	store     *store.Store
	extractor Extractor
	chatter   *Chatter
	now       func() time.Time
	newJobID  func() string
}

// NewService wires the assistant to a store.
func NewService(st *store.Store, extractor Extractor, chatter *Chatter) *Service {
	if chatter == nil {
		chatter = NewChatter(nil, 0)
	}
	return &Service{
		store:     st,
		extractor: extractor,
		chatter:   chatter,
		now:       time.Now,
		newJobID:  parsing.NewJobID,
	}
}

// Send posts a user message and returns the assistant's answer. Postings are
// parsed and held as the pending job; anything else gets a chat reply.
func (s *Service) Send(ctx context.Context, text string, image []byte) (types.ChatMessage, error) {
	if strings.TrimSpace(text) == "" && len(image) == 0 {
		return types.ChatMessage{}, ErrEmptyInput
	}

	sessionID := s.store.CurrentSessionID()
	if sessionID == "" {
		sessionID = s.store.AddChatSession(types.ChatSession{Messages: s.store.Messages()}).ID
	}

	history := s.store.Messages()
	user := types.ChatMessage{Type: types.MessageUser, Content: text}
	if len(image) > 0 {
		user.Image = llm.ImageDataURL(image)
	}
	s.store.AddMessage(user)

	var reply types.ChatMessage
	if ShouldParseJob(text, len(image) > 0) {
		job := s.extractor.Extract(ctx, text, image)
		reply = s.store.AddMessage(types.ChatMessage{
			Type:      types.MessageAI,
			Content:   prompts.MustGet(prompts.ChatFile, "parsed-reply"),
			ParsedJob: job,
			Stage:     types.StageComplete,
		})
		s.store.SetPendingJob(job)
		log.Printf("[chat] parsed posting %q at %q", job.Position.Title, job.Company.Name)
	} else {
		answer := s.chatter.Reply(ctx, history, text)
		reply = s.store.AddMessage(types.ChatMessage{Type: types.MessageAI, Content: answer})
	}

	title := store.DeriveSessionTitle(s.store.Messages())
	if _, err := s.store.UpdateChatSession(sessionID, types.SessionPatch{Title: &title}); err != nil {
		log.Printf("[chat] failed to retitle session %s: %v", sessionID, err)
	}
	return reply, nil
}

// ConfirmAdd files the pending job into folderID as a new, unreminded job.
func (s *Service) ConfirmAdd(folderID string) (*types.JobRecord, error) {
	pending := s.store.PendingJob()
	if pending == nil {
		return nil, ErrNoPendingJob
	}
	folder, err := s.store.Folder(folderID)
	if err != nil {
		return nil, err
	}

	job := pending.Clone()
	job.ID = s.newJobID()
	job.FolderID = folderID
	job.CreatedAt = s.now().UnixMilli()
	job.Position.Status = types.StatusNew
	job.HasReminder = false
	job.ReminderEvent = ""

	added, err := s.store.AddJob(job)
	if err != nil {
		return nil, fmt.Errorf("failed to add job: %w", err)
	}
	s.store.ClearPendingJob()
	s.store.Enqueue(types.Notification{
		Type:    types.SeveritySuccess,
		Message: fmt.Sprintf("已添加至「%s」", folder.Name),
		Action:  &types.Action{Label: "去查看", Target: BookmarkTarget},
	})
	return added, nil
}

// Dismiss hides a parsed-job message and drops the pending job.
func (s *Service) Dismiss(messageID string) error {
	if err := s.store.HideMessage(messageID); err != nil {
		return err
	}
	s.store.ClearPendingJob()
	return nil
}
