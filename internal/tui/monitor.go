// Package tui renders the live execution monitor for a run: task list,
// attempt counters, rate-limit waits, and an event log.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joonhok/cafeloop/internal/executor"
	"github.com/joonhok/cafeloop/internal/task"
	"github.com/joonhok/cafeloop/internal/tui/components"
	"github.com/joonhok/cafeloop/internal/tui/styles"
)

// Monitor runs the executor under a live TUI. It returns the executor's
// error after both the run loop and the program have finished.
func Monitor(ctx context.Context, r *task.Run, exec *executor.Executor) error {
	// The program intentionally does not share the run context: cancelling
	// the run must leave the UI alive to show the drain and final state.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newMonitorModel(r, cancel))

	done := make(chan error, 1)
	go func() {
		done <- exec.WithEvents(&programEvents{p: p}).Run(ctx)
		p.Send(execFinishedMsg{})
	}()

	_, uiErr := p.Run()
	cancel()
	runErr := <-done
	if runErr != nil {
		return runErr
	}
	return uiErr
}

// Messages from the executor goroutine.

type taskStartedMsg struct {
	num, total   int
	id, article  string
	attempt, max int
}

type taskDoneMsg struct {
	id      string
	status  string
	class   executor.Class
	errText string
}

type waitMsg struct {
	id   string
	wait time.Duration
}

type runDoneMsg struct {
	succeeded, fatal, total int
	duration                time.Duration
}

type runAbortedMsg struct{ reason string }

type runCancelledMsg struct{}

type execFinishedMsg struct{}

// programEvents adapts executor.Events onto tea messages.
type programEvents struct {
	p *tea.Program
}

func (e *programEvents) OnTaskStart(num, total int, t *task.Task, attempt, maxAttempts int) {
	e.p.Send(taskStartedMsg{num: num, total: total, id: t.ID, article: t.Article, attempt: attempt, max: maxAttempts})
}

func (e *programEvents) OnTaskDone(t *task.Task, out executor.Outcome) {
	msg := taskDoneMsg{id: t.ID, status: t.Status, class: out.Class}
	if out.Err != nil {
		msg.errText = out.Err.Error()
	}
	e.p.Send(msg)
}

func (e *programEvents) OnWait(t *task.Task, wait time.Duration) {
	e.p.Send(waitMsg{id: t.ID, wait: wait})
}

func (e *programEvents) OnRunDone(succeeded, fatal, total int, duration time.Duration) {
	e.p.Send(runDoneMsg{succeeded: succeeded, fatal: fatal, total: total, duration: duration})
}

func (e *programEvents) OnRunAborted(reason string) {
	e.p.Send(runAbortedMsg{reason: reason})
}

func (e *programEvents) OnRunCancelled() {
	e.p.Send(runCancelledMsg{})
}

// monitorState tracks where the monitor is in the run lifecycle.
type monitorState int

const (
	stateRunning monitorState = iota
	stateCancelling
	stateDone
)

type taskRow struct {
	id      string
	article string
	status  string
}

type monitorModel struct {
	state       monitorState
	cancel      context.CancelFunc
	userStopped bool

	runName string
	runID   string
	rows    []taskRow

	currentNum int
	totalTasks int
	attempt    int
	maxAttempt int
	waitUntil  string

	finalLine string

	spinner   spinner.Model
	output    components.OutputViewport
	statusBar components.StatusBar

	width  int
	height int
}

func newMonitorModel(r *task.Run, cancel context.CancelFunc) monitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	rows := make([]taskRow, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		rows = append(rows, taskRow{id: t.ID, article: t.Article, status: t.Status})
	}

	return monitorModel{
		cancel:     cancel,
		runName:    r.Name,
		runID:      r.ID,
		rows:       rows,
		totalTasks: len(r.Tasks),
		spinner:    sp,
		output:     components.NewOutputViewport(80, 8, 0),
		statusBar:  components.NewStatusBar(),
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (m monitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateDone {
				return m, tea.Quit
			}
			if m.state == stateRunning {
				m.state = stateCancelling
				m.userStopped = true
				m.output.AddLine(styles.WarnStyle.Render("Stopping after the current task..."))
				m.cancel()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.SetSize(msg.Width-2, outputHeight(msg.Height))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case taskStartedMsg:
		m.currentNum = msg.num
		m.attempt = msg.attempt
		m.maxAttempt = msg.max
		m.waitUntil = ""
		m.setRowStatus(msg.id, task.StatusInProgress)
		m.output.AddLine(fmt.Sprintf("%s attempt %d/%d -> %s", msg.id, msg.attempt, msg.max, msg.article))
		return m, nil

	case taskDoneMsg:
		m.setRowStatus(msg.id, msg.status)
		m.output.AddLine(outcomeLine(msg))
		return m, nil

	case waitMsg:
		m.waitUntil = fmt.Sprintf("waiting %s before %s", msg.wait.Round(time.Second), msg.id)
		m.output.AddLine(styles.SubtleStyle.Render(m.waitUntil))
		return m, nil

	case runDoneMsg:
		m.state = stateDone
		if msg.fatal > 0 {
			m.finalLine = styles.ErrorStyle.Render(
				fmt.Sprintf("Done: %d/%d succeeded, %d failed (%s)", msg.succeeded, msg.total, msg.fatal, msg.duration.Round(time.Second)))
		} else {
			m.finalLine = styles.SuccessStyle.Render(
				fmt.Sprintf("Done: all %d succeeded (%s)", msg.total, msg.duration.Round(time.Second)))
		}
		return m, nil

	case runAbortedMsg:
		m.state = stateDone
		m.finalLine = styles.ErrorStyle.Render("Aborted: " + msg.reason)
		return m, nil

	case runCancelledMsg:
		m.state = stateDone
		m.finalLine = styles.WarnStyle.Render("Cancelled; resume with the same command.")
		if !m.userStopped {
			// External signal, nobody at the keyboard to press q.
			return m, tea.Quit
		}
		return m, nil

	case execFinishedMsg:
		if m.state != stateDone {
			m.state = stateDone
			m.finalLine = styles.SubtleStyle.Render("Run stopped.")
		}
		return m, nil
	}

	cmd := m.output.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m monitorModel) View() string {
	var b []string

	b = append(b, styles.TitleStyle.Render(fmt.Sprintf("cafeloop run %s (%s)", m.runName, m.runID)))

	done := 0
	for _, row := range m.rows {
		b = append(b, fmt.Sprintf(" %s %-5s %s", statusGlyph(row.status), row.id, row.article))
		if row.status == task.StatusSucceeded || row.status == task.StatusFailedFatal {
			done++
		}
	}

	b = append(b, "")
	b = append(b, " "+components.NewProgress(done, m.totalTasks, 24).View())

	switch m.state {
	case stateRunning:
		line := m.spinner.View() + " running"
		if m.currentNum > 0 {
			line = fmt.Sprintf("%s task %d/%d, attempt %d/%d", m.spinner.View(), m.currentNum, m.totalTasks, m.attempt, m.maxAttempt)
		}
		if m.waitUntil != "" {
			line += styles.SubtleStyle.Render("  (" + m.waitUntil + ")")
		}
		b = append(b, " "+line)
	case stateCancelling:
		b = append(b, " "+m.spinner.View()+" finishing current task...")
	case stateDone:
		b = append(b, " "+m.finalLine)
	}

	b = append(b, "")
	b = append(b, m.output.View())

	help := []string{"q: stop"}
	if m.state == stateDone {
		help = []string{"q: quit"}
	}
	b = append(b, m.statusBar.Render(m.width, help))

	return lipgloss.JoinVertical(lipgloss.Left, b...)
}

func (m *monitorModel) setRowStatus(id, status string) {
	for i := range m.rows {
		if m.rows[i].id == id {
			m.rows[i].status = status
			return
		}
	}
}

func statusGlyph(status string) string {
	switch status {
	case task.StatusSucceeded:
		return styles.SuccessStyle.Render("✓")
	case task.StatusFailedFatal:
		return styles.ErrorStyle.Render("✗")
	case task.StatusInProgress:
		return styles.WarnStyle.Render("▸")
	case task.StatusFailedRetry:
		return styles.WarnStyle.Render("↻")
	default:
		return styles.SubtleStyle.Render("·")
	}
}

func outcomeLine(msg taskDoneMsg) string {
	switch msg.class {
	case executor.ClassSuccess:
		return styles.SuccessStyle.Render(msg.id + " posted")
	case executor.ClassDuplicate:
		return styles.SuccessStyle.Render(msg.id + " already present (counted as success)")
	case executor.ClassRejected:
		return styles.ErrorStyle.Render(fmt.Sprintf("%s rejected: %s", msg.id, msg.errText))
	default:
		return styles.WarnStyle.Render(fmt.Sprintf("%s %s: %s", msg.id, msg.class, msg.errText))
	}
}

func outputHeight(total int) int {
	h := total / 3
	if h < 4 {
		h = 4
	}
	if h > 12 {
		h = 12
	}
	return h
}
