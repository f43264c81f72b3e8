package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/runoshun/autocrew/internal/domain"
	"github.com/runoshun/autocrew/internal/usecase"
)

// Colors used in command output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#9CA3AF") // Light gray
)

// summaryWidth is the widest summary shown in task tables.
const summaryWidth = 60

// styles renders output for one writer. Color is only emitted when the
// writer is a terminal.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	OK      lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(colorMuted),
		OK:      r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Bold(true).Foreground(colorError),
	}
}

// priority renders a priority badge.
func (s styles) priority(p domain.Priority) string {
	label := "[" + p.Label() + "]"
	switch p {
	case domain.PriorityCritical:
		return s.Error.Render(label)
	case domain.PriorityHigh:
		return s.Warning.Render(label)
	case domain.PriorityUnset:
		return s.Muted.Render(label)
	default:
		return label
	}
}

// status renders a task status.
func (s styles) status(st usecase.TaskStatus) string {
	switch st {
	case usecase.TaskStatusReady:
		return s.OK.Render(string(st))
	case usecase.TaskStatusBlocked:
		return s.Warning.Render(string(st))
	default:
		return s.Muted.Render(string(st))
	}
}

// runState renders the final state of a run.
func (s styles) runState(st domain.RunState) string {
	if st == domain.RunStateFailed {
		return s.Error.Render(string(st))
	}
	return s.OK.Render(string(st))
}


// shorten truncates text to the summary column width.
func shorten(text string) string {
	return truncate.StringWithTail(text, summaryWidth, "...")
}
