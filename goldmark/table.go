package goldmark

import (
	"bytes"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const (
	cellSeparator = " │ "
	minCellWidth  = 3
)

// renderTable lays a GFM table out in fixed-width columns. Cell widths are
// measured in terminal cells, so Hangul and other wide characters line up.
// Columns are narrowed (widest first) until the table fits width.
func (r *ansiRenderer) renderTable(table *extast.Table, source []byte, width int, buf *bytes.Buffer) {
	var rows [][]string
	header := -1
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		if _, ok := row.(*extast.TableHeader); ok {
			header = len(rows)
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, plainText(cell, source))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}

	cols := len(table.Alignments)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	fitWidths(widths, width-(cols-1)*runewidth.StringWidth(cellSeparator))

	sep := r.muted.Render(cellSeparator)
	for i, row := range rows {
		parts := make([]string, cols)
		for c := range cols {
			var cell string
			if c < len(row) {
				cell = row[c]
			}
			align := extast.AlignNone
			if c < len(table.Alignments) {
				align = table.Alignments[c]
			}
			parts[c] = pad(runewidth.Truncate(cell, widths[c], "…"), widths[c], align)
			if i == header {
				parts[c] = r.tableHead.Render(parts[c])
			}
		}
		buf.WriteString(strings.TrimRight(strings.Join(parts, sep), " "))
		buf.WriteString("\n")
		if i == header {
			rules := make([]string, cols)
			for c, w := range widths {
				rules[c] = strings.Repeat("─", w)
			}
			buf.WriteString(r.muted.Render(strings.Join(rules, "─┼─")))
			buf.WriteString("\n")
		}
	}
}

// fitWidths shrinks the widest columns one cell at a time until their sum
// fits available or every column is at the minimum.
func fitWidths(widths []int, available int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > available {
		widest := slices.Index(widths, slices.Max(widths))
		if widths[widest] <= minCellWidth {
			return
		}
		widths[widest]--
		total--
	}
}

func pad(s string, width int, align extast.Alignment) string {
	switch align {
	case extast.AlignRight:
		return runewidth.FillLeft(s, width)
	case extast.AlignCenter:
		gap := width - runewidth.StringWidth(s)
		if gap <= 0 {
			return s
		}
		return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
	default:
		return runewidth.FillRight(s, width)
	}
}

// plainText returns the unstyled text content of an inline container.
func plainText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.URL(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
