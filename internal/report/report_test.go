package report

import (
	"strings"
	"testing"

	"github.com/joonhok/cafeloop/internal/task"
)

func sampleRun() *task.Run {
	return &task.Run{
		ID:     "abc123",
		Name:   "promo-week",
		Status: task.RunStatusCompletedBad,
		Tasks: []task.Task{
			{ID: "t01", Article: "mycafe/100", Status: task.StatusSucceeded, Attempts: 1},
			{ID: "t02", Article: "mycafe/200", Status: task.StatusFailedFatal, Attempts: 5, LastError: "request throttled"},
			{ID: "t03", Article: "mycafe/300", Status: task.StatusPending},
		},
	}
}

func TestSummary(t *testing.T) {
	out := Summary(sampleRun())

	if !strings.Contains(out, "promo-week") || !strings.Contains(out, "abc123") {
		t.Errorf("summary missing run identity:\n%s", out)
	}
	if !strings.Contains(out, "completed with failures") {
		t.Errorf("summary missing status label:\n%s", out)
	}
	if !strings.Contains(out, "succeeded: 1") || !strings.Contains(out, "failed: 1") || !strings.Contains(out, "remaining: 1") {
		t.Errorf("summary missing counts:\n%s", out)
	}
	if !strings.Contains(out, "t02") || !strings.Contains(out, "request throttled") {
		t.Errorf("summary missing fatal detail:\n%s", out)
	}
}

func TestSummaryFatalWithoutDetail(t *testing.T) {
	r := sampleRun()
	r.Tasks[1].LastError = ""

	out := Summary(r)
	if !strings.Contains(out, "(no detail)") {
		t.Errorf("expected placeholder for empty reason:\n%s", out)
	}
}

func TestTaskTable(t *testing.T) {
	out := TaskTable(sampleRun())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "t01") || !strings.Contains(lines[0], "succeeded") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "attempts=5") || !strings.Contains(lines[1], "request throttled") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestTaskTableTruncatesLongErrors(t *testing.T) {
	r := sampleRun()
	r.Tasks[1].LastError = strings.Repeat("x", 200)

	out := TaskTable(r)
	if !strings.Contains(out, "...") {
		t.Errorf("expected truncation marker:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 100)) {
		t.Errorf("long error was not truncated")
	}
}
