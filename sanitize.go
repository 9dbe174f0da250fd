package sawchat

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes agent-supplied text safe to print on a terminal. It strips
// ANSI escape sequences and control characters, keeping tabs and newlines.
// CRLF and lone CR both become LF.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteByte('\n')
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r <= 0x1F || r == 0x7F:
			// dropped
		case r >= 0x80 && r <= 0x9F:
			// C1 controls can start escape sequences on some terminals.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
