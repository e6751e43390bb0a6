package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
	"github.com/fwojciec/bimrag/goldmark"
)

var _ Block = (*AnswerBlock)(nil)

// AnswerBlock renders the streamed answer with markdown formatting.
// Finalized paragraphs (separated by a blank line) are rendered once per
// width and cached; only the trailing paragraph is re-rendered on each delta.
type AnswerBlock struct {
	content string
	theme   bimrag.Theme

	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAnswerBlock creates an empty AnswerBlock.
func NewAnswerBlock(theme bimrag.Theme) *AnswerBlock {
	return &AnswerBlock{
		theme:            theme,
		finalizedByWidth: make(map[int]string),
	}
}

// Set replaces the displayed answer with the sanitized text. Text that
// extends the current content keeps the finalized cache; anything else (the
// authoritative final answer differing from the streamed deltas) starts over.
//
// Callers pass the whole accumulated answer, so an escape sequence split
// across deltas is stripped once it is complete.
func (b *AnswerBlock) Set(text string) {
	text = bimrag.Sanitize(text)
	if !strings.HasPrefix(text, b.finalizedRaw) {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	b.content = text
	b.promoteFinalized()
}

// Text returns the raw markdown being displayed.
func (b *AnswerBlock) Text() string { return b.content }

func (b *AnswerBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	return b, nil
}

func (b *AnswerBlock) View(width int) string {
	finalized := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		trailing += "\n```"
	}
	if strings.TrimSpace(trailing) == "" {
		return finalized
	}
	rendered := goldmark.Render(trailing, width, b.theme)
	if strings.TrimSpace(rendered) == "" {
		return finalized
	}
	if finalized == "" {
		return rendered
	}
	return strings.TrimRight(finalized, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promoteFinalized moves the finalized prefix to the last blank line that is
// not inside an open code fence.
func (b *AnswerBlock) promoteFinalized() {
	raw := b.content
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AnswerBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AnswerBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.content
	}
	return strings.TrimPrefix(b.content, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" markers. Triple backticks
// inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
