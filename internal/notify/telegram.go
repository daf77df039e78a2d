// Package notify pushes deadline reminders to a Telegram chat.
package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
)

// maxMessageRunes stays under Telegram's 4096 character limit.
const maxMessageRunes = 4000

// Sender delivers a Telegram message. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends reminder digests to one chat.
type Telegram struct {
	api    Sender
	chatID int64
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

// NewTelegramWithSender uses an existing sender.
func NewTelegramWithSender(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

// SendDigest sends one message listing jobs and their deadlines. Long
// digests are split across messages. It returns the number of messages sent.
func (t *Telegram) SendDigest(title string, jobs []*types.JobRecord, now time.Time) (int, error) {
	sent := 0
	for _, text := range splitMessage(Digest(title, jobs, now), maxMessageRunes) {
		msg := tgbotapi.NewMessage(t.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.api.Send(msg); err != nil {
			return sent, fmt.Errorf("failed to send telegram message: %w", err)
		}
		sent++
	}
	return sent, nil
}

// Digest renders jobs as Telegram HTML, one block per job in the given order.
func Digest(title string, jobs []*types.JobRecord, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏰ <b>%s</b>\n", html.EscapeString(title))
	if len(jobs) == 0 {
		sb.WriteString("\n暂无需要关注的截止日期 🎉")
		return sb.String()
	}
	fmt.Fprintf(&sb, "共 %d 个职位\n", len(jobs))

	for _, j := range jobs {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "🏢 <b>%s</b> · %s\n", html.EscapeString(j.Company.Name), html.EscapeString(j.Position.Title))
		fmt.Fprintf(&sb, "📌 %s · %s\n", j.ReminderEvent.Label(), countdown(j.Position.Deadline, now))
		if j.Position.Location != "" || j.Position.Salary != "" {
			fmt.Fprintf(&sb, "📍 %s %s\n", html.EscapeString(j.Position.Location), html.EscapeString(j.Position.Salary))
		}
		if j.ApplyLink != "" {
			fmt.Fprintf(&sb, "🔗 <a href=\"%s\">投递链接</a>\n", html.EscapeString(j.ApplyLink))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func countdown(deadline string, now time.Time) string {
	days, ok := store.DaysUntil(deadline, now)
	switch {
	case !ok:
		return "截止日期未知"
	case days < 0:
		return fmt.Sprintf("已过期 %d 天", -days)
	case days == 0:
		return "今天截止"
	default:
		return fmt.Sprintf("还剩 %d 天", days)
	}
}

// splitMessage breaks text on line boundaries into chunks of at most limit
// runes. A single longer line is cut.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var cur []rune
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(cur)+len(r) > limit && len(cur) > 0 {
			chunks = append(chunks, strings.TrimRight(string(cur), "\n"))
			cur = cur[:0]
		}
		for len(r) > limit {
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.TrimRight(string(cur), "\n"))
	}
	return chunks
}
