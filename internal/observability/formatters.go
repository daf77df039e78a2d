// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens a line to the box interior, counting runes.
func clip(line string) string {
	r := []rune(line)
	if len(r) <= boxWidth-4 {
		return line
	}
	return string(r[:boxWidth-7]) + "..."
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintJob outputs a human-readable summary of a job record.
func (p *Printer) PrintJob(job *types.JobRecord) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:    %s (%s)\n", job.Company.Name, job.Company.Type))
	sb.WriteString(fmt.Sprintf("Title:      %s\n", job.Position.Title))
	sb.WriteString(fmt.Sprintf("Salary:     %s\n", job.Position.Salary))
	sb.WriteString(fmt.Sprintf("Location:   %s\n", job.Position.Location))
	sb.WriteString(fmt.Sprintf("Education:  %s\n", job.Position.Education))
	sb.WriteString(fmt.Sprintf("Experience: %s\n", job.Position.Experience))
	sb.WriteString(fmt.Sprintf("Status:     %s\n", job.Position.Status.Label()))
	if job.Position.Deadline != "" {
		sb.WriteString(fmt.Sprintf("Deadline:   %s\n", job.Position.Deadline))
	}
	sb.WriteString("\n")

	writeList(&sb, "Responsibilities", job.AIAnalysis.Responsibilities)
	writeList(&sb, "Requirements", job.AIAnalysis.Requirements)

	s := job.AIAnalysis.Suggestions
	if s.Resume != "" || s.Interview != "" || s.Negotiation != "" {
		sb.WriteString("Suggestions:\n")
		if s.Resume != "" {
			sb.WriteString(fmt.Sprintf("  简历: %s\n", s.Resume))
		}
		if s.Interview != "" {
			sb.WriteString(fmt.Sprintf("  面试: %s\n", s.Interview))
		}
		if s.Negotiation != "" {
			sb.WriteString(fmt.Sprintf("  谈薪: %s\n", s.Negotiation))
		}
	}

	p.printBox("JOB RECORD", sb.String())
}

// PrintExtraction prints the extracted record followed by how it was produced.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintExtraction(res parsing.Result) {
	p.PrintJob(res.Job)
	fmt.Fprintf(p.out, "Source: %s\n", res.Source)
	if res.Err != nil {
		fmt.Fprintf(p.out, "Fallback cause: %v\n", res.Err)
	}
}

// PrintSchedule lists reminder jobs with the days left relative to now.
func (p *Printer) PrintSchedule(jobs []*types.JobRecord, now time.Time) {
	var sb strings.Builder
	if len(jobs) == 0 {
		sb.WriteString("No upcoming deadlines\n")
	}
	for _, j := range jobs {
		sb.WriteString(fmt.Sprintf("%s · %s\n", j.Company.Name, j.Position.Title))
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", j.ReminderEvent.Label(), j.Position.Deadline, daysLabel(j.Position.Deadline, now)))
	}
	p.printBox(fmt.Sprintf("SCHEDULE (%d)", len(jobs)), sb.String())
}

func daysLabel(deadline string, now time.Time) string {
	days, ok := store.DaysUntil(deadline, now)
	switch {
	case !ok:
		return "unknown"
	case days == 0:
		return "due today"
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// PrintStats outputs the schedule bucket counts.
func (p *Printer) PrintStats(stats types.ScheduleStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Urgent:   %d\n", stats.Urgent))
	sb.WriteString(fmt.Sprintf("Week:     %d\n", stats.Week))
	sb.WriteString(fmt.Sprintf("Overdue:  %d\n", stats.Overdue))
	sb.WriteString(fmt.Sprintf("All:      %d\n", stats.All))
	p.printBox("SCHEDULE STATS", sb.String())
}

// PrintChatReply prints one assistant message.
func (p *Printer) PrintChatReply(msg types.ChatMessage) {
	if msg.ParsedJob != nil {
		p.PrintJob(msg.ParsedJob)
	}
	p.printBox("ASSISTANT", msg.Content)
}
