package bubbletea

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
)

var _ tea.Model = Model{}

// initializer is implemented by panels that load data on startup.
type initializer interface {
	Init() tea.Cmd
}

// Model is the Bubble Tea model for the bimrag TUI.
type Model struct {
	// Input is the query input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	panels []Panel
	active int
	styles Styles
	ready  bool
}

// New creates a TUI Model hosting panels. The first panel starts active.
func New(theme bimrag.Theme, panels ...Panel) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about Revit, IFC, families..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:  ti,
		panels: panels,
		styles: NewStyles(theme),
	}
}

// Active returns the panel receiving queries.
func (m Model) Active() Panel { return m.panels[m.active] }

// Running reports whether any panel has a query in flight.
func (m Model) Running() bool {
	for _, p := range m.panels {
		if p.Running() {
			return true
		}
	}
	return false
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	for _, p := range m.panels {
		if i, ok := p.(initializer); ok {
			cmds = append(cmds, i.Init())
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Panels ignore messages that are not theirs; broadcasting keeps
	// background panels finishing their runs while another one is shown.
	var cmds []tea.Cmd
	for i, p := range m.panels {
		var cmd tea.Cmd
		m.panels[i], cmd = p.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)

	m = m.refresh()
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.Active().Status())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	tabsHeight := 1
	inputHeight := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-tabsHeight-inputHeight-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.Active().Running() {
			m.Active().Stop()
			return m.refresh(), nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		m.Active().Stop()
		return m.refresh(), nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		cmd := m.Active().Search(text)
		m = m.refresh()
		m.Viewport.GotoTop()
		return m, cmd

	case tea.KeyTab:
		m.active = (m.active + 1) % len(m.panels)
		m = m.refresh()
		m.Viewport.GotoTop()
		return m, nil

	case tea.KeyShiftTab:
		m.active = (m.active - 1 + len(m.panels)) % len(m.panels)
		m = m.refresh()
		m.Viewport.GotoTop()
		return m, nil

	case tea.KeyCtrlO:
		var cmd tea.Cmd
		m.panels[m.active], cmd = m.Active().Update(ToggleMsg{})
		return m.refresh(), cmd
	}

	// Only forward non-character keys to the viewport: 'j'/'k' scroll the
	// viewport and are also query text.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// refresh re-renders the active panel into the viewport, following the
// bottom of the output while the panel is running.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.Active().View(m.Viewport.Width))
	if m.Active().Running() {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) tabBar() string {
	tabs := make([]string, len(m.panels))
	for i, p := range m.panels {
		name := p.Name()
		if p.Running() {
			name += "*"
		}
		if i == m.active {
			tabs[i] = m.styles.TabActive.Render(name)
		} else {
			tabs[i] = m.styles.TabInactive.Render(name)
		}
	}
	return strings.Join(tabs, "  ")
}
