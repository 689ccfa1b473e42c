package task

import "time"

// Task represents a single comment action scheduled against one article.
type Task struct {
	ID        string    `json:"id"`
	Article   string    `json:"article"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Task status constants
const (
	StatusPending     = "pending"
	StatusInProgress  = "in_progress"
	StatusSucceeded   = "succeeded"
	StatusFailedRetry = "failed_retryable"
	StatusFailedFatal = "failed_fatal"
)

// Actionable reports whether the task can still be offered to the executor.
func (t *Task) Actionable() bool {
	return t.Status == StatusPending || t.Status == StatusFailedRetry
}
