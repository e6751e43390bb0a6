package bimrag

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Query    int // Submitted question prefix
	Citation int // Citation titles
	Link     int // Video links
	Error    int // Error messages
	Success  int // Finished-run indicators
	Muted    int // Status bar, placeholders, snippets
	CodeBg   int // Code block background
	Accent   int // Headings, active panel tab
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Query:    4,
		Citation: 3,
		Link:     6,
		Error:    1,
		Success:  2,
		Muted:    8,
		CodeBg:   0,
		Accent:   5,
	}
}
