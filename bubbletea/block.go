package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// Block is a renderable element of a panel.
// Unlike tea.Model, View takes a width parameter so the panel controls
// layout and blocks are testable in isolation.
type Block interface {
	Update(tea.Msg) (Block, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
// Sent by the root model when the user presses the toggle key.
type ToggleMsg struct{}
