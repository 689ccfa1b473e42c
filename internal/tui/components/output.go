package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultMaxLines = 500

// OutputViewport wraps bubbles/viewport with a line ring buffer and
// auto-scroll: new lines land at the bottom unless the user scrolled away.
type OutputViewport struct {
	viewport   viewport.Model
	lines      []string
	maxLines   int
	autoScroll bool
}

// NewOutputViewport creates an OutputViewport with the given dimensions.
// maxLines controls the ring buffer size (0 uses the default of 500).
func NewOutputViewport(width, height, maxLines int) OutputViewport {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}

	vp := viewport.New(width, height)
	vp.SetContent("")

	return OutputViewport{
		viewport:   vp,
		lines:      make([]string, 0, maxLines),
		maxLines:   maxLines,
		autoScroll: true,
	}
}

// AddLine appends a line to the buffer, evicting the oldest when full.
func (o *OutputViewport) AddLine(line string) {
	o.lines = append(o.lines, line)
	if len(o.lines) > o.maxLines {
		o.lines = o.lines[len(o.lines)-o.maxLines:]
	}
	o.viewport.SetContent(strings.Join(o.lines, "\n"))
	if o.autoScroll {
		o.viewport.GotoBottom()
	}
}

// SetSize resizes the viewport.
func (o *OutputViewport) SetSize(width, height int) {
	o.viewport.Width = width
	o.viewport.Height = height
	o.viewport.SetContent(strings.Join(o.lines, "\n"))
	if o.autoScroll {
		o.viewport.GotoBottom()
	}
}

// Update forwards key/mouse events for scrolling. Scrolling up disables
// auto-scroll; returning to the bottom re-enables it.
func (o *OutputViewport) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	o.viewport, cmd = o.viewport.Update(msg)
	o.autoScroll = o.viewport.AtBottom()
	return cmd
}

// View renders the viewport contents.
func (o OutputViewport) View() string {
	return o.viewport.View()
}
