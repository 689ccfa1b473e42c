// Package report builds the end-of-run summaries shown to the operator.
package report

import (
	"fmt"
	"strings"

	"github.com/joonhok/cafeloop/internal/task"
)

// Summary renders the final run summary: per-status counts and the reason
// for every fatal outcome.
func Summary(r *task.Run) string {
	succeeded, fatal, remaining := r.Counts()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s (%s): %s\n", r.Name, r.ID, statusLabel(r.Status))
	fmt.Fprintf(&sb, "  succeeded: %d  failed: %d  remaining: %d\n", succeeded, fatal, remaining)

	for _, t := range r.FatalTasks() {
		fmt.Fprintf(&sb, "  %s %s after %d attempt(s): %s\n", t.ID, t.Article, t.Attempts, blankAs(t.LastError, "(no detail)"))
	}
	return sb.String()
}

// TaskTable renders one line per task for the status command.
func TaskTable(r *task.Run) string {
	var sb strings.Builder
	for _, t := range r.Tasks {
		fmt.Fprintf(&sb, "  %-5s %-18s attempts=%d  %s", t.ID, t.Status, t.Attempts, t.Article)
		if t.LastError != "" {
			fmt.Fprintf(&sb, "  (%s)", truncate(t.LastError, 60))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func statusLabel(status string) string {
	switch status {
	case task.RunStatusCompleted:
		return "completed"
	case task.RunStatusCompletedBad:
		return "completed with failures"
	case task.RunStatusAborted:
		return "aborted"
	case task.RunStatusInProgress:
		return "in progress"
	default:
		return "not started"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func blankAs(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
