package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const progressLogFileName = "progress.log"

// Event type constants for progress logging.
const (
	EventRunStarted    = "run_started"
	EventRunCompleted  = "run_completed"
	EventRunCancelled  = "run_cancelled"
	EventRunAborted    = "run_aborted"
	EventTaskStarted   = "task_started"
	EventTaskSucceeded = "task_succeeded"
	EventTaskFailed    = "task_failed"
	EventThrottled     = "throttled"
)

// ProgressEvent represents a single progress log entry.
type ProgressEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// ProgressLogger appends run events to a JSON Lines file inside the run
// folder, giving an auditable per-task trail alongside run.json.
type ProgressLogger struct {
	path string
}

// NewProgressLogger creates a progress logger for the given run directory.
func NewProgressLogger(runDir string) *ProgressLogger {
	return &ProgressLogger{
		path: filepath.Join(runDir, progressLogFileName),
	}
}

// Log appends a progress event to the log file.
func (p *ProgressLogger) Log(event string, data map[string]interface{}) error {
	entry := ProgressEvent{
		Timestamp: time.Now(),
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// RunStarted logs a run_started event.
func (p *ProgressLogger) RunStarted(runID string, totalTasks int) error {
	return p.Log(EventRunStarted, map[string]interface{}{
		"run_id":      runID,
		"total_tasks": totalTasks,
	})
}

// TaskStarted logs a task_started event.
func (p *ProgressLogger) TaskStarted(taskID string, attempt int) error {
	return p.Log(EventTaskStarted, map[string]interface{}{
		"task_id": taskID,
		"attempt": attempt,
	})
}

// TaskSucceeded logs a task_succeeded event. duplicate is true when success
// was established by finding the comment already present.
func (p *ProgressLogger) TaskSucceeded(taskID string, attempt int, duplicate bool) error {
	return p.Log(EventTaskSucceeded, map[string]interface{}{
		"task_id":   taskID,
		"attempt":   attempt,
		"duplicate": duplicate,
	})
}

// TaskFailed logs a task_failed event.
func (p *ProgressLogger) TaskFailed(taskID string, attempt int, fatal bool, reason string) error {
	return p.Log(EventTaskFailed, map[string]interface{}{
		"task_id": taskID,
		"attempt": attempt,
		"fatal":   fatal,
		"reason":  reason,
	})
}

// Throttled logs a throttled event.
func (p *ProgressLogger) Throttled(taskID string, attempt int) error {
	return p.Log(EventThrottled, map[string]interface{}{
		"task_id": taskID,
		"attempt": attempt,
	})
}

// RunCompleted logs a run_completed event with summary statistics.
func (p *ProgressLogger) RunCompleted(total, succeeded, fatal int, duration time.Duration) error {
	return p.Log(EventRunCompleted, map[string]interface{}{
		"total_tasks":     total,
		"succeeded_tasks": succeeded,
		"fatal_tasks":     fatal,
		"duration_ms":     duration.Milliseconds(),
	})
}

// RunCancelled logs a run_cancelled event.
func (p *ProgressLogger) RunCancelled(lastTaskID string) error {
	return p.Log(EventRunCancelled, map[string]interface{}{
		"last_task_id": lastTaskID,
	})
}

// RunAborted logs a run_aborted event with the fatal reason.
func (p *ProgressLogger) RunAborted(reason string) error {
	return p.Log(EventRunAborted, map[string]interface{}{
		"reason": reason,
	})
}
