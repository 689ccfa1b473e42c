// Package executor drives a run's task queue through the poster under the
// rate limiter, persisting every outcome before moving on.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joonhok/cafeloop/internal/naver"
	"github.com/joonhok/cafeloop/internal/session"
	"github.com/joonhok/cafeloop/internal/task"
)

// DefaultMaxAttempts is the per-task attempt ceiling when none is configured.
const DefaultMaxAttempts = 5

// SessionSource issues valid sessions and accepts invalidations.
type SessionSource interface {
	Acquire(ctx context.Context) (*session.Session, error)
	Invalidate(sess *session.Session)
}

// Admitter is the rate limiter surface the executor drives.
type Admitter interface {
	Admit() time.Duration
	Penalize(severity int)
	Observe(success bool)
}

// Executor orchestrates one run: starting -> running -> draining, or
// aborted on a run-fatal condition.
type Executor struct {
	runDir   string
	run      *task.Run
	logger   *task.ProgressLogger
	poster   Poster
	sessions SessionSource
	limiter  Admitter
	lock     *task.RunLock
	events   Events

	maxAttempts int
	wallClock   time.Duration

	sleep     func(ctx context.Context, d time.Duration) error
	startTime time.Time
}

// New creates an Executor for the given run directory and run.
func New(runDir string, r *task.Run, poster Poster, sessions SessionSource, limiter Admitter) *Executor {
	return &Executor{
		runDir:      runDir,
		run:         r,
		logger:      task.NewProgressLogger(runDir),
		poster:      poster,
		sessions:    sessions,
		limiter:     limiter,
		lock:        task.NewRunLock(runDir),
		events:      NopEvents{},
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
	}
}

// WithEvents sets the event sink.
func (e *Executor) WithEvents(ev Events) *Executor {
	if ev != nil {
		e.events = ev
	}
	return e
}

// WithMaxAttempts sets the per-task attempt ceiling.
func (e *Executor) WithMaxAttempts(n int) *Executor {
	if n > 0 {
		e.maxAttempts = n
	}
	return e
}

// WithWallClock sets the run's wall-clock budget (0 = unlimited).
func (e *Executor) WithWallClock(d time.Duration) *Executor {
	e.wallClock = d
	return e
}

// Run executes all actionable tasks in queue order. A nil return means the
// run drained (possibly with per-task fatal failures, which the caller
// inspects on the run) or was cancelled; a non-nil return means the run
// aborted or could not proceed.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.lock.Acquire(); err != nil {
		return err
	}
	defer e.lock.Release()

	if e.run.AllSettled() {
		fmt.Println("All tasks already settled.")
		return nil
	}

	e.run.Status = task.RunStatusInProgress
	if err := task.SaveRun(e.runDir, e.run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	e.startTime = time.Now()
	if err := e.logger.RunStarted(e.run.ID, len(e.run.Tasks)); err != nil {
		return fmt.Errorf("failed to log run started: %w", err)
	}

	for {
		// Cancellation is honored between tasks only; an in-flight post
		// always finishes and gets recorded.
		if ctx.Err() != nil {
			return e.cancelled()
		}
		if e.wallClock > 0 && time.Since(e.startTime) > e.wallClock {
			return e.abort(fmt.Errorf("wall-clock budget of %s exceeded", e.wallClock))
		}

		idx := e.run.NextActionable(e.maxAttempts)
		if idx == -1 {
			break
		}
		t := &e.run.Tasks[idx]

		sess, err := e.sessions.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return e.cancelled()
			}
			if errors.Is(err, naver.ErrCaptcha) || errors.Is(err, naver.ErrAuth) {
				return e.abort(err)
			}
			// Transient login failure burns one attempt on the task at hand
			// so a dead identity endpoint cannot spin forever.
			t.Attempts++
			out := Outcome{Class: ClassTransport, Err: fmt.Errorf("acquire session: %w", err)}
			e.recordOutcome(t, nil, out)
			if err := task.SaveRun(e.runDir, e.run); err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
			e.events.OnTaskDone(t, out)
			continue
		}

		if wait := e.limiter.Admit(); wait > 0 {
			e.events.OnWait(t, wait)
			if err := e.sleep(ctx, wait); err != nil {
				return e.cancelled()
			}
		}

		// Mark in-flight before the network call so a crash re-offers the
		// task instead of assuming it completed.
		t.Attempts++
		t.Status = task.StatusInProgress
		t.UpdatedAt = time.Now()
		if err := task.SaveRun(e.runDir, e.run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		e.events.OnTaskStart(idx+1, len(e.run.Tasks), t, t.Attempts, e.maxAttempts)
		if err := e.logger.TaskStarted(t.ID, t.Attempts); err != nil {
			return fmt.Errorf("failed to log task started: %w", err)
		}

		out := e.poster.Post(ctx, sess, t)
		e.recordOutcome(t, sess, out)
		if err := task.SaveRun(e.runDir, e.run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		e.events.OnTaskDone(t, out)
	}

	return e.drain()
}

// recordOutcome applies one attempt's outcome to the task and the limiter.
// The caller persists the run afterwards.
func (e *Executor) recordOutcome(t *task.Task, sess *session.Session, out Outcome) {
	t.UpdatedAt = time.Now()

	switch out.Class {
	case ClassSuccess, ClassDuplicate:
		t.Status = task.StatusSucceeded
		t.LastError = ""
		e.limiter.Observe(true)
		e.logger.TaskSucceeded(t.ID, t.Attempts, out.Class == ClassDuplicate)
		return
	case ClassRejected:
		t.Status = task.StatusFailedFatal
		t.LastError = errString(out)
		e.limiter.Observe(false)
		e.logger.TaskFailed(t.ID, t.Attempts, true, t.LastError)
		return
	case ClassThrottled:
		e.limiter.Penalize(1)
		e.logger.Throttled(t.ID, t.Attempts)
	case ClassAuthExpired:
		e.sessions.Invalidate(sess)
	}

	// Retryable classes: throttled, auth expired, transport.
	e.limiter.Observe(false)
	t.LastError = errString(out)
	if t.Attempts >= e.maxAttempts {
		t.Status = task.StatusFailedFatal
		e.logger.TaskFailed(t.ID, t.Attempts, true, t.LastError)
	} else {
		t.Status = task.StatusFailedRetry
		e.logger.TaskFailed(t.ID, t.Attempts, false, t.LastError)
	}
}

// drain flushes final state after the queue is exhausted.
func (e *Executor) drain() error {
	succeeded, fatal, _ := e.run.Counts()
	if fatal > 0 {
		e.run.Status = task.RunStatusCompletedBad
	} else {
		e.run.Status = task.RunStatusCompleted
	}
	if err := task.SaveRun(e.runDir, e.run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	duration := time.Since(e.startTime)
	e.logger.RunCompleted(len(e.run.Tasks), succeeded, fatal, duration)
	e.events.OnRunDone(succeeded, fatal, len(e.run.Tasks), duration)
	return nil
}

// cancelled handles an external stop: the current task reverts to pending,
// state is flushed, and the run exits cleanly for a later resume.
func (e *Executor) cancelled() error {
	lastID := ""
	for i := range e.run.Tasks {
		if e.run.Tasks[i].Status == task.StatusInProgress {
			lastID = e.run.Tasks[i].ID
		}
	}
	e.run.RevertInterrupted()
	if err := task.SaveRun(e.runDir, e.run); err != nil {
		fmt.Printf("Warning: failed to save run after cancel: %v\n", err)
	}
	e.logger.RunCancelled(lastID)
	e.events.OnRunCancelled()
	return nil
}

// abort halts the run on a run-fatal condition. Recorded outcomes remain
// valid; remaining tasks stay pending for a later resume.
func (e *Executor) abort(cause error) error {
	e.run.RevertInterrupted()
	e.run.Status = task.RunStatusAborted
	if err := task.SaveRun(e.runDir, e.run); err != nil {
		fmt.Printf("Warning: failed to save run after abort: %v\n", err)
	}
	e.logger.RunAborted(cause.Error())
	e.events.OnRunAborted(cause.Error())
	return fmt.Errorf("run aborted: %w", cause)
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
