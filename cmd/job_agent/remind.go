package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/job-tracker/internal/notify"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send a deadline digest to Telegram",
	Long: `Remind collects the jobs whose reminder deadlines fall in --window and sends them as
one Telegram digest. TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID (or the config file) name the
bot and chat. --dry-run prints the digest instead.`,
	RunE: runRemind,
}

var (
	remindWindow string
	remindEvent  string
	remindDryRun bool
)

var digestTitles = map[types.UrgencyFilter]string{
	types.UrgencyUrgent:  "紧急截止（3天内）",
	types.UrgencyWeek:    "本周截止",
	types.UrgencyOverdue: "已逾期",
	types.UrgencyAll:     "全部日程",
}

func init() {
	remindCmd.Flags().StringVarP(&remindWindow, "window", "w", string(types.UrgencyUrgent), "Deadline window: urgent, week, overdue or all")
	remindCmd.Flags().StringVar(&remindEvent, "event", string(types.EventAll), "Reminder event filter: all, toApply, writtenTest, interview or toOffer")
	remindCmd.Flags().BoolVar(&remindDryRun, "dry-run", false, "Print the schedule instead of sending it")

	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
	window := types.UrgencyFilter(remindWindow)
	title, ok := digestTitles[window]
	if !ok {
		return fmt.Errorf("invalid --window %q: must be urgent, week, overdue or all", remindWindow)
	}

	ctx := context.Background()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.store.ScheduleJobs(window, types.EventTypeFilter(remindEvent))
	if err != nil {
		return err
	}
	now := time.Now()

	if remindDryRun {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintStats(a.store.ScheduleStats())
		printer.PrintSchedule(jobs, now)
		return nil
	}

	if len(jobs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No deadlines in window, nothing sent")
		return nil
	}

	bot, err := notify.NewTelegram(a.cfg.TelegramToken, a.cfg.TelegramChatID)
	if err != nil {
		return err
	}
	sent, err := bot.SendDigest(title, jobs, now)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %d job(s) in %d message(s)\n", len(jobs), sent)
	return nil
}
