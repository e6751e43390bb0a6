// Package goldmark renders answer markdown to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
//
// Answers come from the summarization backend as GitHub-flavored markdown:
// tables, task lists and strikethrough are rendered alongside the CommonMark
// blocks. Citation markers such as "[2]" are highlighted so they can be
// matched against the source list.
package goldmark

import "github.com/fwojciec/bimrag"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow. Partial input from an in-flight
// stream renders as far as it parses.
func Render(source string, width int, theme bimrag.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
