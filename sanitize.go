package bimrag

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips terminal escape sequences and control characters from
// server-supplied text before it reaches a terminal. Tabs and newlines are
// kept, CRLF becomes LF and a lone CR is dropped.
//
// Sanitize accumulated text rather than single stream fragments: a sequence
// split across two fragments loses its ESC byte in the first one, and the
// remainder then prints as inert text.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return r
		case r <= 0x1F || r == 0x7F:
			return -1
		case r >= 0x80 && r <= 0x9F:
			// C1 controls; 0x9B is a single-byte CSI on some terminals.
			return -1
		}
		return r
	}, s)
}
