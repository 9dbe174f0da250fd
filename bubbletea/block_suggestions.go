package bubbletea

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*SuggestionsBlock)(nil)

// SuggestionsBlock lists numbered quick questions.
type SuggestionsBlock struct {
	items  []string
	styles Styles
}

// NewSuggestionsBlock creates a SuggestionsBlock.
func NewSuggestionsBlock(items []string, styles Styles) *SuggestionsBlock {
	return &SuggestionsBlock{items: items, styles: styles}
}

// Pick returns the suggestion numbered by input ("1" is the first).
func (b *SuggestionsBlock) Pick(input string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(b.items) {
		return "", false
	}
	return b.items[n-1], true
}

func (b *SuggestionsBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *SuggestionsBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	lines := []string{b.styles.Accent.Render("Quick suggestions")}
	for i, item := range b.items {
		lines = append(lines, fmt.Sprintf("  %s %s", b.styles.Muted.Render(strconv.Itoa(i+1)+"."), item))
	}
	lines = append(lines, b.styles.Muted.Render("Type a number and press Enter to ask it."))
	return wrap.Render(strings.Join(lines, "\n"))
}
