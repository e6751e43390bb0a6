package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/bimrag"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Query       lipgloss.Style
	Citation    lipgloss.Style
	Link        lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t bimrag.Theme) Styles {
	return Styles{
		Query:       lipgloss.NewStyle().Foreground(ansiColor(t.Query)).Bold(true),
		Citation:    lipgloss.NewStyle().Foreground(ansiColor(t.Citation)),
		Link:        lipgloss.NewStyle().Foreground(ansiColor(t.Link)).Underline(true),
		Error:       lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:     lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:       lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		TabActive:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true).Underline(true),
		TabInactive: lipgloss.NewStyle().Foreground(ansiColor(t.Muted)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
