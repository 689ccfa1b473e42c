package executor

import (
	"time"

	"github.com/joonhok/cafeloop/internal/task"
)

// Events receives callbacks during run execution. Implement this in the TUI
// or console layer to surface progress.
type Events interface {
	// OnTaskStart is called when a post attempt begins.
	OnTaskStart(num, total int, t *task.Task, attempt, maxAttempts int)

	// OnTaskDone is called after an attempt's outcome has been recorded.
	OnTaskDone(t *task.Task, out Outcome)

	// OnWait is called before the executor sleeps for rate-limit admission.
	OnWait(t *task.Task, wait time.Duration)

	// OnRunDone is called when the queue is exhausted.
	OnRunDone(succeeded, fatal, total int, duration time.Duration)

	// OnRunAborted is called when a run-fatal condition halts the run.
	OnRunAborted(reason string)

	// OnRunCancelled is called when an external stop is honored.
	OnRunCancelled()
}

// NopEvents is an Events implementation that ignores everything.
type NopEvents struct{}

func (NopEvents) OnTaskStart(int, int, *task.Task, int, int) {}
func (NopEvents) OnTaskDone(*task.Task, Outcome)             {}
func (NopEvents) OnWait(*task.Task, time.Duration)           {}
func (NopEvents) OnRunDone(int, int, int, time.Duration)     {}
func (NopEvents) OnRunAborted(string)                        {}
func (NopEvents) OnRunCancelled()                            {}
