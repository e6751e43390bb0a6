package bubbletea

// Snippet exports snippet for testing.
func Snippet(s string, width int) string {
	return snippet(s, width)
}

// ActiveIndex returns the index of the active panel.
func ActiveIndex(m Model) int {
	return m.active
}
