package observability

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleJob() *types.JobRecord {
	return &types.JobRecord{
		ID:      "job-1",
		Company: types.Company{Name: "字节跳动", Type: types.CompanyInternet},
		Position: types.Position{
			Title:      "后端开发工程师",
			Salary:     "25-40K",
			Location:   "北京",
			Status:     types.StatusInProgress,
			Education:  "本科",
			Experience: "3-5年",
			Deadline:   "2026-10-20",
		},
		AIAnalysis: types.Analysis{
			Responsibilities: []string{"负责核心服务开发"},
			Requirements:     []string{"熟悉Go", "熟悉MySQL"},
			Suggestions:      types.Suggestions{Resume: "突出高并发项目"},
		},
	}
}

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(sampleJob())
	output := buf.String()

	assert.Contains(t, output, "JOB RECORD")
	assert.Contains(t, output, "字节跳动")
	assert.Contains(t, output, "互联网")
	assert.Contains(t, output, "后端开发工程师")
	assert.Contains(t, output, "进行中")
	assert.Contains(t, output, "熟悉MySQL")
	assert.Contains(t, output, "突出高并发项目")
	assert.NotContains(t, output, "面试:")
}

func TestPrintJob_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(nil)

	assert.Empty(t, buf.String())
}

func TestPrintJob_TruncatesLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	job := sampleJob()
	job.AIAnalysis.Requirements = nil
	for i := 0; i < 8; i++ {
		job.AIAnalysis.Requirements = append(job.AIAnalysis.Requirements, fmt.Sprintf("要求%d", i))
	}

	p.PrintJob(job)
	output := buf.String()

	assert.Contains(t, output, "要求4")
	assert.NotContains(t, output, "要求5")
	assert.Contains(t, output, "... and 3 more")
}

func TestPrintExtraction(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExtraction(parsing.Result{
		Job:    sampleJob(),
		Source: parsing.SourceHeuristic,
		Err:    errors.New("model timeout"),
	})
	output := buf.String()

	assert.Contains(t, output, "Source: heuristic")
	assert.Contains(t, output, "Fallback cause: model timeout")
}

func TestPrintSchedule(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)

	soon := sampleJob()
	soon.ReminderEvent = types.EventInterview
	late := sampleJob()
	late.Company.Name = "腾讯"
	late.ReminderEvent = types.EventToApply
	late.Position.Deadline = "2026-10-15"

	p.PrintSchedule([]*types.JobRecord{soon, late}, now)
	output := buf.String()

	assert.Contains(t, output, "SCHEDULE (2)")
	assert.Contains(t, output, "待面试")
	assert.Contains(t, output, "3 days left")
	assert.Contains(t, output, "2 days overdue")
}

func TestPrintSchedule_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSchedule(nil, time.Now())

	assert.Contains(t, buf.String(), "No upcoming deadlines")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStats(types.ScheduleStats{Urgent: 1, Week: 2, Overdue: 3, All: 6})
	output := buf.String()

	assert.Contains(t, output, "Urgent:   1")
	assert.Contains(t, output, "All:      6")
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("长", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
