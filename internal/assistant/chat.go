// Package assistant drives the chat tab: it decides whether input is a job
// posting or a question, talks to the model, and turns parsed postings into
// bookmarked jobs.
package assistant

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/prompts"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultChatTimeout bounds a single conversational model call.
const DefaultChatTimeout = 60 * time.Second

// Model request parameters for conversation
const (
	ChatTemperature = 0.7
	ChatMaxTokens   = 1500
	historyWindow   = 10
)

var jobKeywords = []string{"职位", "岗位", "JD", "招聘", "薪资", "要求", "职责", "工程师", "经理", "总监", "专员"}

// ShouldParseJob reports whether input looks like a job posting rather than
// a question. Any image counts as a posting.
func ShouldParseJob(text string, hasImage bool) bool {
	if hasImage {
		return true
	}
	for _, kw := range jobKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Chatter answers free-form questions.
type Chatter struct {
	client  llm.Client
	timeout time.Duration
}

// NewChatter creates a Chatter. A nil client answers with canned replies.
func NewChatter(client llm.Client, timeout time.Duration) *Chatter {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &Chatter{client: client, timeout: timeout}
}

// Reply answers input in the context of history. It never fails: model
// errors fall back to a canned reply.
func (c *Chatter) Reply(ctx context.Context, history []types.ChatMessage, input string) string {
	if c.client == nil {
		log.Printf("[chat] no model client configured, using canned reply")
		return FallbackReply(input)
	}

	req, err := buildChatRequest(history, input)
	if err != nil {
		log.Printf("[chat] failed to build request: %v", err)
		return FallbackReply(input)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.client.Complete(ctx, req)
	if err != nil {
		log.Printf("[chat] model call failed, using canned reply: %v", err)
		return FallbackReply(input)
	}
	if strings.TrimSpace(content) == "" {
		return prompts.MustGet(prompts.ChatFile, "empty-reply")
	}
	return content
}

func buildChatRequest(history []types.ChatMessage, input string) (llm.Request, error) {
	system, err := prompts.Get(prompts.ChatFile, "system")
	if err != nil {
		return llm.Request{}, err
	}
	placeholder, err := prompts.Get(prompts.ChatFile, "image-placeholder")
	if err != nil {
		return llm.Request{}, err
	}

	msgs := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, m := range history {
		switch {
		case m.Type == types.MessageUser:
			content := m.Content
			if content == "" {
				content = placeholder
			}
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: content})
		case m.Type == types.MessageAI && m.ParsedJob == nil:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: input})

	return llm.Request{
		Tier:        llm.TierChat,
		Messages:    msgs,
		Temperature: ChatTemperature,
		MaxTokens:   ChatMaxTokens,
	}, nil
}

var fallbackTopics = []struct {
	key      string
	keywords []string
}{
	{"fallback-resume", []string{"简历", "cv"}},
	{"fallback-interview", []string{"面试", "面经"}},
	{"fallback-salary", []string{"薪资", "工资", "offer"}},
	{"fallback-greeting", []string{"你好", "hi", "hello"}},
	{"fallback-thanks", []string{"谢谢", "感谢"}},
}

// FallbackReply returns the canned answer for input's topic.
func FallbackReply(input string) string {
	lower := strings.ToLower(input)
	for _, topic := range fallbackTopics {
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				return prompts.MustGet(prompts.ChatFile, topic.key)
			}
		}
	}
	return prompts.MustGet(prompts.ChatFile, "fallback-default")
}
