package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joonhok/cafeloop/internal/config"
	"github.com/joonhok/cafeloop/internal/executor"
	"github.com/joonhok/cafeloop/internal/naver"
	"github.com/joonhok/cafeloop/internal/ratelimit"
	"github.com/joonhok/cafeloop/internal/report"
	"github.com/joonhok/cafeloop/internal/session"
	"github.com/joonhok/cafeloop/internal/task"
	"github.com/joonhok/cafeloop/internal/tui"
)

var runPlain bool

func init() {
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Plain console output instead of the TUI monitor")
}

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a comment queue (resumes from the first pending task)",
	Long:  `Execute a previously created run. Already-succeeded tasks are skipped, so a run interrupted by a crash or Ctrl-C picks up exactly where it left off.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, err := config.Load("")
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	runDir, err := task.FindRunFolder(args[0])
	if err != nil {
		return err
	}
	r, err := task.LoadRun(runDir)
	if err != nil {
		return err
	}

	client := naver.NewClient(settings.Cafe.BaseURL, settings.Cafe.AuthURL, settings.RequestTimeout())
	sessions := session.NewStore(client, creds.ID, creds.Password, settings.Retry.AuthRetries)
	limiter := ratelimit.New(settings.Rate.Ceiling, settings.RateInterval(), settings.PenaltyBase(), settings.PenaltyCap())

	exec := executor.New(runDir, r, executor.NewCafePoster(client), sessions, limiter).
		WithMaxAttempts(settings.Retry.MaxAttempts).
		WithWallClock(settings.WallClock())

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if runPlain {
		err = exec.WithEvents(consoleEvents{}).Run(ctx)
	} else {
		err = tui.Monitor(ctx, r, exec)
	}

	fmt.Print(report.Summary(r))
	if err != nil {
		return err
	}

	if fatals := r.FatalTasks(); len(fatals) > 0 {
		ids := make([]string, 0, len(fatals))
		for _, t := range fatals {
			ids = append(ids, t.ID)
		}
		return fmt.Errorf("%d task(s) failed: %s", len(ids), strings.Join(ids, ", "))
	}
	if r.Status != task.RunStatusCompleted {
		return fmt.Errorf("run stopped before finishing; resume with 'cafeloop run %s'", r.Name)
	}
	return nil
}

// consoleEvents prints executor progress for --plain runs.
type consoleEvents struct{}

func (consoleEvents) OnTaskStart(num, total int, t *task.Task, attempt, maxAttempts int) {
	fmt.Printf("\nTask %d/%d: %s [Attempt %d/%d]\n", num, total, t.Article, attempt, maxAttempts)
}

func (consoleEvents) OnTaskDone(t *task.Task, out executor.Outcome) {
	switch out.Class {
	case executor.ClassSuccess:
		fmt.Printf("Posted.\n")
	case executor.ClassDuplicate:
		fmt.Printf("Already present, counted as success.\n")
	default:
		fmt.Printf("Attempt failed (%s): %v\n", out.Class, out.Err)
	}
}

func (consoleEvents) OnWait(t *task.Task, wait time.Duration) {
	fmt.Printf("Waiting %s before %s...\n", wait.Round(time.Millisecond), t.ID)
}

func (consoleEvents) OnRunDone(succeeded, fatal, total int, duration time.Duration) {
	fmt.Printf("\nRun finished in %s.\n", duration.Round(time.Second))
}

func (consoleEvents) OnRunAborted(reason string) {
	fmt.Printf("\nRun aborted: %s\n", reason)
}

func (consoleEvents) OnRunCancelled() {
	fmt.Printf("\nRun cancelled; resume later with the same command.\n")
}
