package goldmark

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// citationRe matches bracketed citation markers like "[1]" or "[2, 3]".
var citationRe = regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`)

// collectInline recursively collects styled inline text from a node's
// children. Adjacent text nodes are joined before citation markers are
// matched, since the parser splits unresolved "[1]" brackets into separate
// nodes.
func (r *ansiRenderer) collectInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	var run []byte
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			run = append(run, n.Segment.Value(source)...)
			if n.SoftLineBreak() {
				run = append(run, ' ')
			}
			if n.HardLineBreak() {
				run = append(run, '\n')
			}
		case *ast.String:
			run = append(run, n.Value...)
		default:
			r.writeText(run, &buf)
			run = run[:0]
			r.renderInline(c, source, &buf)
		}
	}
	r.writeText(run, &buf)
	return buf.String()
}

func (r *ansiRenderer) renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Emphasis:
		inner := r.collectInline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *extast.Strikethrough:
		buf.WriteString(r.strike.Render(r.collectInline(n, source)))

	case *extast.TaskCheckBox:
		if n.IsChecked {
			buf.WriteString("[x] ")
		} else {
			buf.WriteString("[ ] ")
		}

	case *ast.CodeSpan:
		var code bytes.Buffer
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				code.Write(t.Segment.Value(source))
			}
		}
		buf.WriteString(r.code.Render(code.String()))

	case *ast.Link:
		inner := r.collectInline(n, source)
		url := string(n.Destination)
		buf.WriteString(r.link.Render(inner))
		if inner != url {
			buf.WriteString(" ")
			buf.WriteString(r.muted.Render("(" + url + ")"))
		}

	case *ast.AutoLink:
		buf.WriteString(r.link.Render(string(n.URL(source))))

	case *ast.Image:
		alt := r.collectInline(n, source)
		buf.WriteString(r.muted.Render("[image: " + alt + "] " + string(n.Destination)))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		buf.WriteString(r.collectInline(node, source))
	}
}

// writeText writes plain text, highlighting citation markers.
func (r *ansiRenderer) writeText(b []byte, buf *bytes.Buffer) {
	last := 0
	for _, loc := range citationRe.FindAllIndex(b, -1) {
		buf.Write(b[last:loc[0]])
		buf.WriteString(r.citation.Render(string(b[loc[0]:loc[1]])))
		last = loc[1]
	}
	buf.Write(b[last:])
}
