package console

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshTickMsg drives the periodic gauge refresh cycle.
type RefreshTickMsg struct {
	Time time.Time
}

// ArbiterTickMsg drives the periodic audio arbitration pass, which
// runs on its own interval independent of the view coordinator's
// triggers.
type ArbiterTickMsg struct {
	Time time.Time
}

// DiagMsg delivers a host diagnostics sample for the overlay view.
type DiagMsg struct {
	Sample DiagSample
	Err    error
}

// StatusMsg updates the footer status line.
type StatusMsg struct {
	Text  string
	IsErr bool
}

func refreshTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return RefreshTickMsg{Time: t}
	})
}

func arbiterTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return ArbiterTickMsg{Time: t}
	})
}

// StatusCmd posts a footer status update.
func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

// ErrorCmd posts an error to the footer status line.
func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}
