package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/bimrag"
	"github.com/mattn/go-runewidth"
)

var _ Block = (*SourcesBlock)(nil)

// sourceIndent is the left margin of snippet and video lines.
const sourceIndent = "    "

// SourcesBlock renders the numbered citation list of an answer. Numbers
// match the [n] markers the backend writes into the answer text. The block
// starts expanded and collapses to a one-line summary on ToggleMsg.
type SourcesBlock struct {
	sources   []bimrag.Source
	collapsed bool
	styles    Styles
}

// NewSourcesBlock creates an empty SourcesBlock.
func NewSourcesBlock(styles Styles) *SourcesBlock {
	return &SourcesBlock{styles: styles}
}

// Set replaces the citation list. Duplicate documents are listed once.
func (b *SourcesBlock) Set(sources []bimrag.Source) {
	b.sources = bimrag.DedupSources(sources)
}

// Len returns the number of listed sources.
func (b *SourcesBlock) Len() int { return len(b.sources) }

// Collapsed reports whether the list is folded.
func (b *SourcesBlock) Collapsed() bool { return b.collapsed }

func (b *SourcesBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *SourcesBlock) View(width int) string {
	if len(b.sources) == 0 {
		return ""
	}
	if b.collapsed {
		return b.styles.Accent.Render(fmt.Sprintf("▶ Sources (%d)", len(b.sources)))
	}
	lines := []string{b.styles.Accent.Render(fmt.Sprintf("▼ Sources (%d)", len(b.sources)))}
	for i, s := range b.sources {
		lines = append(lines, renderSource(i+1, s, width, b.styles))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderSource formats one retrieved document: a numbered title, a
// single-line snippet and the video link when there is one.
func renderSource(n int, s bimrag.Source, width int, styles Styles) string {
	title := bimrag.Sanitize(s.Title)
	if title == "" {
		title = s.DocID
	}
	if title == "" {
		title = "(untitled)"
	}
	prefix := fmt.Sprintf("[%d] ", n)
	lines := []string{styles.Citation.Render(prefix + snippet(title, width-len(prefix)))}
	if text := snippet(bimrag.Sanitize(s.Snippet), width-len(sourceIndent)); text != "" {
		lines = append(lines, sourceIndent+styles.Muted.Render(text))
	}
	if s.VideoURL != "" {
		label := bimrag.Sanitize(s.VideoLabel)
		if label == "" {
			label = "video"
		}
		lines = append(lines, sourceIndent+styles.Link.Render("▶ "+label)+" "+styles.Muted.Render(bimrag.Sanitize(s.VideoURL)))
	}
	return strings.Join(lines, "\n")
}

// snippet collapses whitespace to single spaces and truncates to width
// terminal cells.
func snippet(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width < 1 {
		width = 1
	}
	return runewidth.Truncate(s, width, "…")
}
