package sawchat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg  int // User message accent
	Progress int // Progress labels
	SQL      int // SQL block header
	Error    int // Error messages
	Success  int // Success indicators
	Muted    int // Status bar, placeholders
	CodeBg   int // Code block background
	Accent   int // Headings, links, table headers
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		Progress: 6,
		SQL:      3,
		Error:    1,
		Success:  2,
		Muted:    8,
		CodeBg:   0,
		Accent:   5,
	}
}
