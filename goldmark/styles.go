package goldmark

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sawchat"
)

type styles struct {
	bold        lipgloss.Style
	italic      lipgloss.Style
	strike      lipgloss.Style
	heading     lipgloss.Style
	muted       lipgloss.Style
	link        lipgloss.Style
	code        lipgloss.Style
	sqlLabel    lipgloss.Style
	tableHeader lipgloss.Style
}

func newStyles(theme sawchat.Theme) styles {
	return styles{
		bold:        lipgloss.NewStyle().Bold(true),
		italic:      lipgloss.NewStyle().Italic(true),
		strike:      lipgloss.NewStyle().Strikethrough(true),
		heading:     lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:       lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		link:        lipgloss.NewStyle().Underline(true),
		code:        lipgloss.NewStyle().Bold(true).Background(ansiColor(theme.CodeBg)),
		sqlLabel:    lipgloss.NewStyle().Foreground(ansiColor(theme.SQL)).Bold(true),
		tableHeader: lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
	}
}

// ansiColor maps a theme index to a terminal color. Negative means none.
func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
