package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
	"github.com/mattn/go-runewidth"
)

var _ Block = (*LinksBlock)(nil)

// LinksBlock lists the links and figures a batch answer carries.
type LinksBlock struct {
	links  []string
	images []bimrag.Image
	styles Styles
}

// NewLinksBlock creates an empty LinksBlock.
func NewLinksBlock(styles Styles) *LinksBlock {
	return &LinksBlock{styles: styles}
}

// Set replaces the listed links and figures. Blank links are dropped.
func (b *LinksBlock) Set(links []string, images []bimrag.Image) {
	b.links = b.links[:0]
	for _, l := range links {
		if l = strings.TrimSpace(bimrag.Sanitize(l)); l != "" {
			b.links = append(b.links, l)
		}
	}
	b.images = images
}

// Len returns the number of listed entries.
func (b *LinksBlock) Len() int { return len(b.links) + len(b.images) }

func (b *LinksBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	return b, nil
}

func (b *LinksBlock) View(width int) string {
	if b.Len() == 0 {
		return ""
	}
	var lines []string
	if len(b.links) > 0 {
		lines = append(lines, b.styles.Accent.Render("Links"))
		for _, l := range b.links {
			lines = append(lines, sourceIndent+b.styles.Link.Render(truncate(l, width-len(sourceIndent))))
		}
	}
	if len(b.images) > 0 {
		lines = append(lines, b.styles.Accent.Render("Figures"))
		for _, img := range b.images {
			name := bimrag.Sanitize(img.FilePath)
			if name == "" {
				name = bimrag.Sanitize(img.ID)
			}
			lines = append(lines, sourceIndent+b.styles.Muted.Render(truncate(name, width-len(sourceIndent))))
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
