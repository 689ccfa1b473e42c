package task

import "time"

// Run represents one comment-posting run: the ordered task list plus the
// persisted status of every task. It is the durable RunState; a restarted
// process resumes from whatever run.json recorded last.
type Run struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceFile string    `json:"sourceFile"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
	Tasks      []Task    `json:"tasks"`
}

// Run status constants
const (
	RunStatusNotStarted   = "not_started"
	RunStatusInProgress   = "in_progress"
	RunStatusCompleted    = "completed"
	RunStatusCompletedBad = "completed_with_failures"
	RunStatusAborted      = "aborted"
)

// NextActionable returns the index of the first task the executor may still
// attempt (pending, or failed_retryable with attempts left), or -1.
func (r *Run) NextActionable(maxAttempts int) int {
	for i := range r.Tasks {
		t := &r.Tasks[i]
		if !t.Actionable() {
			continue
		}
		if t.Status == StatusFailedRetry && t.Attempts >= maxAttempts {
			continue
		}
		return i
	}
	return -1
}

// RevertInterrupted resets tasks left in_progress by an interrupted process
// back to pending, preserving their attempt counts. Returns the number of
// tasks reverted.
func (r *Run) RevertInterrupted() int {
	n := 0
	for i := range r.Tasks {
		if r.Tasks[i].Status == StatusInProgress {
			r.Tasks[i].Status = StatusPending
			n++
		}
	}
	return n
}

// Counts returns the number of succeeded, fatally failed, and remaining tasks.
func (r *Run) Counts() (succeeded, fatal, remaining int) {
	for i := range r.Tasks {
		switch r.Tasks[i].Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailedFatal:
			fatal++
		default:
			remaining++
		}
	}
	return succeeded, fatal, remaining
}

// FatalTasks returns the tasks that ended failed_fatal.
func (r *Run) FatalTasks() []Task {
	var out []Task
	for i := range r.Tasks {
		if r.Tasks[i].Status == StatusFailedFatal {
			out = append(out, r.Tasks[i])
		}
	}
	return out
}

// AllSettled reports whether no task remains actionable.
func (r *Run) AllSettled() bool {
	for i := range r.Tasks {
		if r.Tasks[i].Actionable() || r.Tasks[i].Status == StatusInProgress {
			return false
		}
	}
	return true
}
