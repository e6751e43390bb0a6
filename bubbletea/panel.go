package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// Panel is a query view driven by the root model. The model holds panels
// through this interface and never reaches into their state.
//
// Search starts a new query. A panel that is already running stops its
// in-flight query first, so at most one query per panel is live. Stop
// cancels the in-flight query, if any; results of a stopped query are
// discarded.
type Panel interface {
	Name() string
	Search(query string) tea.Cmd
	Stop()
	Running() bool
	Update(tea.Msg) (Panel, tea.Cmd)
	View(width int) string
	Status() string
}
