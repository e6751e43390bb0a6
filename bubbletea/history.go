package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
)

var _ Panel = (*HistoryPanel)(nil)

// historyTimeFormat is the layout of entry timestamps.
const historyTimeFormat = "2006-01-02 15:04"

// HistoryPanel lists saved answers whose title, query or answer contains
// the submitted text. An empty filter is not submittable, so the panel shows
// the whole history until the first search.
type HistoryPanel struct {
	load   LoadFunc
	styles Styles

	filter  string
	entries []bimrag.Conversation
	err     error
	loaded  bool
	run     int
	running bool
}

// NewHistoryPanel creates a HistoryPanel reading entries with load.
func NewHistoryPanel(load LoadFunc, theme bimrag.Theme) *HistoryPanel {
	return &HistoryPanel{load: load, styles: NewStyles(theme)}
}

func (p *HistoryPanel) Name() string { return "History" }

func (p *HistoryPanel) Running() bool { return p.running }

// Entries returns the entries matching the current filter.
func (p *HistoryPanel) Entries() []bimrag.Conversation { return p.entries }

// Init loads the unfiltered history.
func (p *HistoryPanel) Init() tea.Cmd {
	return p.Search("")
}

func (p *HistoryPanel) Search(query string) tea.Cmd {
	p.run++
	p.filter = strings.TrimSpace(query)
	p.running = true
	run, filter, load := p.run, p.filter, p.load
	return func() tea.Msg {
		convs, err := load()
		if err != nil {
			return HistoryLoadedMsg{Run: run, Err: err}
		}
		return HistoryLoadedMsg{Run: run, Conversations: FilterHistory(convs, filter)}
	}
}

// Stop discards the pending load.
func (p *HistoryPanel) Stop() {
	if p.running {
		p.run++
		p.running = false
	}
}

func (p *HistoryPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		if msg.Run != p.run {
			return p, nil
		}
		p.running = false
		p.loaded = true
		p.entries = msg.Conversations
		p.err = msg.Err
	case HistorySavedMsg:
		if msg.Err == nil {
			// Reload so the new entry shows up under the current filter.
			return p, p.Search(p.filter)
		}
	}
	return p, nil
}

func (p *HistoryPanel) View(width int) string {
	switch {
	case p.err != nil:
		return NewErrorBlock(p.err, p.styles).View(width)
	case !p.loaded:
		return p.styles.Muted.Render("Loading history...")
	case len(p.entries) == 0 && p.filter != "":
		return p.styles.Muted.Render(fmt.Sprintf("No saved answers match %q.", p.filter))
	case len(p.entries) == 0:
		return p.styles.Muted.Render("No saved answers yet.")
	}
	blocks := make([]string, 0, len(p.entries))
	for _, c := range p.entries {
		var b strings.Builder
		b.WriteString(p.styles.Accent.Render(bimrag.Sanitize(c.Title)))
		b.WriteString(" ")
		b.WriteString(p.styles.Muted.Render(c.CreatedAt.Local().Format(historyTimeFormat)))
		b.WriteString("\n")
		b.WriteString(NewQueryBlock(c.Query, p.styles).View(width))
		if c.Answer != "" {
			b.WriteString("\n")
			b.WriteString(sourceIndent + p.styles.Muted.Render(snippet(c.Answer, width-len(sourceIndent))))
		}
		if n := len(c.Sources); n > 0 {
			b.WriteString("\n")
			b.WriteString(sourceIndent + p.styles.Citation.Render(fmt.Sprintf("%d sources", n)))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func (p *HistoryPanel) Status() string {
	if p.err != nil {
		return p.styles.Error.Render("Could not read history")
	}
	if p.filter != "" {
		return p.styles.Muted.Render(fmt.Sprintf("%d matching %q · Enter to filter again", len(p.entries), p.filter))
	}
	return p.styles.Muted.Render(fmt.Sprintf("%d saved answers · Enter to filter", len(p.entries)))
}

// FilterHistory returns the conversations whose title, query or answer
// contains filter, ignoring case. An empty filter matches everything.
func FilterHistory(convs []bimrag.Conversation, filter string) []bimrag.Conversation {
	if filter == "" {
		return convs
	}
	needle := strings.ToLower(filter)
	var out []bimrag.Conversation
	for _, c := range convs {
		if strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Query), needle) ||
			strings.Contains(strings.ToLower(c.Answer), needle) {
			out = append(out, c)
		}
	}
	return out
}
