// Package parsing turns free-form job postings (text, a screenshot, or both)
// into normalized job records. A hosted model does the extraction when one is
// configured; a keyword fallback covers every failure so extraction always
// yields a record.
package parsing

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/prompts"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultExtractTimeout bounds a single model call.
const DefaultExtractTimeout = 60 * time.Second

// Model request parameters for extraction
const (
	ExtractTemperature = 0.3
	ExtractMaxTokens   = 2000
)

// Source records which path produced a record.
type Source string

// Extraction sources
const (
	SourceModel     Source = "model"
	SourceHeuristic Source = "heuristic"
)

// Result is a record plus how it was produced. Err is the absorbed cause of a
// fallback, or nil.
type Result struct {
	Job    *types.JobRecord
	Source Source
	Err    error
}

// Extractor produces job records from postings.
type Extractor struct {
	client  llm.Client
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout overrides the per-call model deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithIDGenerator overrides job id generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Extractor) { e.newID = newID }
}

// NewExtractor creates an extractor. A nil client means every call uses the
// keyword fallback.
func NewExtractor(client llm.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:  client,
		timeout: DefaultExtractTimeout,
		now:     time.Now,
		newID:   NewJobID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewJobID returns a fresh job identifier.
func NewJobID() string {
	return "job-" + uuid.NewString()
}

// Extract returns a normalized record for the posting. It never fails.
func (e *Extractor) Extract(ctx context.Context, text string, image []byte) *types.JobRecord {
	return e.ExtractDetailed(ctx, text, image).Job
}

// ExtractDetailed is Extract plus the path taken and any absorbed error.
func (e *Extractor) ExtractDetailed(ctx context.Context, text string, image []byte) Result {
	if e.client == nil {
		log.Printf("[extract] no model client configured, using keyword fallback")
		return e.heuristic(text, nil)
	}

	content, err := e.callModel(ctx, text, image)
	if err != nil {
		log.Printf("[extract] model call failed, using keyword fallback: %v", err)
		return e.heuristic(text, err)
	}

	data, ok := Salvage(content)
	if !ok {
		perr := &ParseError{Message: "model response is not a JSON object"}
		log.Printf("[extract] %v (response length %d), using keyword fallback", perr, len(content))
		return e.heuristic(text, perr)
	}

	company, position, analysis := normalizeModelOutput(data)
	return Result{Job: e.record(company, position, analysis), Source: SourceModel}
}

func (e *Extractor) callModel(ctx context.Context, text string, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	system, err := prompts.Get(prompts.ExtractionFile, "system")
	if err != nil {
		return "", err
	}

	req := llm.Request{
		Tier:        llm.TierText,
		Temperature: ExtractTemperature,
		MaxTokens:   ExtractMaxTokens,
		Messages:    []llm.Message{{Role: llm.RoleSystem, Content: system}},
	}

	var user llm.Message
	if len(image) > 0 {
		req.Tier = llm.TierVision
		key := "user-image"
		if strings.TrimSpace(text) != "" {
			key = "user-image-with-text"
		}
		prompt, err := prompts.Render(prompts.ExtractionFile, key, map[string]string{"Text": text})
		if err != nil {
			return "", err
		}
		user = llm.Message{Role: llm.RoleUser, Content: prompt, ImageURL: llm.ImageDataURL(image)}
	} else {
		prompt, err := prompts.Render(prompts.ExtractionFile, "user-text", map[string]string{"Text": text})
		if err != nil {
			return "", err
		}
		user = llm.Message{Role: llm.RoleUser, Content: prompt}
	}
	req.Messages = append(req.Messages, user)

	log.Printf("[extract] requesting %s (image=%t)", e.client.GetModel(req.Tier), len(image) > 0)
	content, err := e.client.Complete(ctx, req)
	if err != nil {
		return "", &APICallError{Message: "model request failed", Cause: err}
	}
	return content, nil
}

func (e *Extractor) heuristic(text string, cause error) Result {
	company, position, analysis := heuristicFields(text)
	return Result{Job: e.record(company, position, analysis), Source: SourceHeuristic, Err: cause}
}

func (e *Extractor) record(company types.Company, position types.Position, analysis types.Analysis) *types.JobRecord {
	position.Status = types.StatusNew
	position.Deadline = ""
	return &types.JobRecord{
		ID:         e.newID(),
		Company:    company,
		Position:   position,
		AIAnalysis: analysis,
		CreatedAt:  e.now().UnixMilli(),
	}
}
