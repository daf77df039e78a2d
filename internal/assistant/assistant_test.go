package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/prompts"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeClient struct {
	mu       sync.Mutex
	response string
	err      error
	requests []llm.Request
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return llm.DefaultConfig().GetModel(tier) }
func (f *fakeClient) Close() error                       { return nil }

type fakeExtractor struct {
	job   *types.JobRecord
	calls int
	image []byte
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, image []byte) *types.JobRecord {
	f.calls++
	f.image = image
	return f.job.Clone()
}

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-t%d", prefix, n)
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(
		store.WithClock(func() time.Time { return testNow }),
		store.WithIDGenerator(sequentialIDs()),
		store.WithSeed(store.Seed{Folders: []types.Folder{
			{ID: "folder-1", Name: "互联网大厂", Color: types.ColorBlue},
			{ID: "folder-2", Name: "外企", Color: types.ColorMint},
		}}),
	)
	t.Cleanup(st.Close)
	return st
}

func parsedJob() *types.JobRecord {
	return &types.JobRecord{
		ID:            "job-parsed",
		Company:       types.Company{Name: "美团", Type: types.CompanyInternet},
		Position:      types.Position{Title: "后端工程师", Status: types.StatusInProgress, Deadline: "2025-03-20"},
		HasReminder:   true,
		ReminderEvent: types.EventInterview,
	}
}

func newTestService(t *testing.T, client llm.Client) (*Service, *store.Store, *fakeExtractor) {
	t.Helper()
	st := newTestStore(t)
	ext := &fakeExtractor{job: parsedJob()}
	svc := NewService(st, ext, NewChatter(client, time.Second))
	svc.now = func() time.Time { return testNow }
	svc.newJobID = func() string { return "job-confirmed" }
	return svc, st, ext
}

func TestShouldParseJob(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hasImage bool
		want     bool
	}{
		{"image only", "", true, true},
		{"image with chat text", "你好", true, true},
		{"job keyword", "招聘后端开发", false, true},
		{"JD acronym", "帮我看看这个JD", false, true},
		{"title suffix", "产品经理，base 上海", false, true},
		{"plain question", "怎么准备面试？", false, false},
		{"lowercase jd", "this jd looks fine", false, false},
		{"empty", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldParseJob(tt.text, tt.hasImage))
		})
	}
}

func TestFallbackReply(t *testing.T) {
	tests := []struct {
		input string
		key   string
	}{
		{"帮我改改简历", "fallback-resume"},
		{"My CV please", "fallback-resume"},
		{"面经有哪些", "fallback-interview"},
		{"这个 Offer 怎么样", "fallback-salary"},
		{"工资能谈吗", "fallback-salary"},
		{"Hello", "fallback-greeting"},
		{"谢谢你", "fallback-thanks"},
		{"随便聊聊", "fallback-default"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, prompts.MustGet(prompts.ChatFile, tt.key), FallbackReply(tt.input))
		})
	}
}

func TestChatter_BuildsHistory(t *testing.T) {
	client := &fakeClient{response: "好的"}
	chatter := NewChatter(client, time.Second)

	var history []types.ChatMessage
	for i := 0; i < 6; i++ {
		history = append(history, types.ChatMessage{Type: types.MessageUser, Content: fmt.Sprintf("q%d", i)})
		history = append(history, types.ChatMessage{Type: types.MessageAI, Content: fmt.Sprintf("a%d", i)})
	}
	history[10] = types.ChatMessage{Type: types.MessageUser}
	history[11] = types.ChatMessage{Type: types.MessageAI, Content: "已为您解析该职位信息", ParsedJob: parsedJob()}

	reply := chatter.Reply(context.Background(), history, "继续")

	assert.Equal(t, "好的", reply)
	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, llm.TierChat, req.Tier)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Equal(t, 1500, req.MaxTokens)

	require.Len(t, req.Messages, 11)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "q1", req.Messages[1].Content)
	assert.Equal(t, llm.RoleAssistant, req.Messages[2].Role)
	assert.Equal(t, prompts.MustGet(prompts.ChatFile, "image-placeholder"), req.Messages[9].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "继续"}, req.Messages[10])
}

func TestChatter_Fallbacks(t *testing.T) {
	t.Run("no client", func(t *testing.T) {
		assert.Equal(t, FallbackReply("你好"), NewChatter(nil, 0).Reply(context.Background(), nil, "你好"))
	})
	t.Run("model error", func(t *testing.T) {
		client := &fakeClient{err: errors.New("boom")}
		assert.Equal(t, FallbackReply("谢谢"), NewChatter(client, 0).Reply(context.Background(), nil, "谢谢"))
	})
	t.Run("empty content", func(t *testing.T) {
		client := &fakeClient{response: "  "}
		got := NewChatter(client, 0).Reply(context.Background(), nil, "?")
		assert.Equal(t, "抱歉，我没有理解您的问题，请再试一次。", got)
	})
}

func TestSend_EmptyInput(t *testing.T) {
	svc, st, _ := newTestService(t, nil)

	_, err := svc.Send(context.Background(), "   ", nil)

	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, st.Messages())
	assert.Empty(t, st.Sessions())
}

func TestSend_ParsesPosting(t *testing.T) {
	svc, st, ext := newTestService(t, nil)

	reply, err := svc.Send(context.Background(), "招聘后端工程师，薪资30k", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, ext.calls)
	assert.Equal(t, types.MessageAI, reply.Type)
	assert.Equal(t, "已为您解析该职位信息", reply.Content)
	assert.Equal(t, types.StageComplete, reply.Stage)
	require.NotNil(t, reply.ParsedJob)
	assert.Equal(t, "美团", reply.ParsedJob.Company.Name)

	msgs := st.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.MessageUser, msgs[0].Type)

	pending := st.PendingJob()
	require.NotNil(t, pending)
	assert.Equal(t, "后端工程师", pending.Position.Title)

	sessions := st.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, st.CurrentSessionID(), sessions[0].ID)
	assert.Equal(t, "美团 后端工程师", sessions[0].Title)
	assert.Len(t, sessions[0].Messages, 2)
}

func TestSend_ImageIsStoredAsDataURL(t *testing.T) {
	svc, st, ext := newTestService(t, nil)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, err := svc.Send(context.Background(), "", png)
	require.NoError(t, err)

	assert.Equal(t, png, ext.image)
	user := st.Messages()[0]
	assert.True(t, strings.HasPrefix(user.Image, "data:image/png;base64,"))
}

func TestSend_ChatsAndKeepsHistory(t *testing.T) {
	client := &fakeClient{response: "先准备项目经历。"}
	svc, st, ext := newTestService(t, client)
	ctx := context.Background()

	_, err := svc.Send(ctx, "你好", nil)
	require.NoError(t, err)
	reply, err := svc.Send(ctx, "怎么准备面试？", nil)
	require.NoError(t, err)

	assert.Zero(t, ext.calls)
	assert.Equal(t, "先准备项目经历。", reply.Content)
	assert.Nil(t, st.PendingJob())
	require.Len(t, client.requests, 2)

	// The second request carries the first exchange plus the new input.
	second := client.requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, "你好", second[1].Content)
	assert.Equal(t, "怎么准备面试？", second[3].Content)

	sessions := st.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "你好", sessions[0].Title)
	assert.Len(t, st.Messages(), 4)
}

func TestSend_ReusesCurrentSession(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	session := st.NewSession()

	_, err := svc.Send(context.Background(), "随便聊聊", nil)
	require.NoError(t, err)

	require.Len(t, st.Sessions(), 1)
	assert.Equal(t, session.ID, st.CurrentSessionID())
}

func TestConfirmAdd(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	_, err := svc.Send(context.Background(), "招聘后端工程师", nil)
	require.NoError(t, err)

	job, err := svc.ConfirmAdd("folder-2")
	require.NoError(t, err)

	assert.Equal(t, "job-confirmed", job.ID)
	assert.Equal(t, "folder-2", job.FolderID)
	assert.Equal(t, testNow.UnixMilli(), job.CreatedAt)
	assert.Equal(t, types.StatusNew, job.Position.Status)
	assert.False(t, job.HasReminder)
	assert.Empty(t, job.ReminderEvent)
	assert.Nil(t, st.PendingJob())

	folder, err := st.Folder("folder-2")
	require.NoError(t, err)
	assert.Equal(t, 1, folder.JobCount)

	notes := st.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "已添加至「外企」", notes[0].Message)
	assert.Equal(t, types.SeveritySuccess, notes[0].Type)
	require.NotNil(t, notes[0].Action)
	assert.Equal(t, "去查看", notes[0].Action.Label)
	assert.Equal(t, BookmarkTarget, notes[0].Action.Target)
}

func TestConfirmAdd_Errors(t *testing.T) {
	svc, st, _ := newTestService(t, nil)

	_, err := svc.ConfirmAdd("folder-1")
	assert.ErrorIs(t, err, ErrNoPendingJob)

	_, err = svc.Send(context.Background(), "招聘后端工程师", nil)
	require.NoError(t, err)

	_, err = svc.ConfirmAdd("folder-missing")
	assert.True(t, store.IsNotFound(err))
	assert.NotNil(t, st.PendingJob())
	assert.Empty(t, st.Jobs())
}

func TestDismiss(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	reply, err := svc.Send(context.Background(), "招聘后端工程师", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Dismiss(reply.ID))

	assert.Nil(t, st.PendingJob())
	assert.Len(t, st.VisibleMessages(), 1)
	assert.True(t, store.IsNotFound(svc.Dismiss("msg-missing")))
}

func TestNewService_UsesParsingExtractor(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, parsing.NewExtractor(nil), nil)

	reply, err := svc.Send(context.Background(), "岗位：数据分析专员\n地点：上海", nil)
	require.NoError(t, err)
	require.NotNil(t, reply.ParsedJob)
	assert.NotNil(t, st.PendingJob())
}
