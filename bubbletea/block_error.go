package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sawchat"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed turn or download with its user-facing message.
type ErrorBlock struct {
	text   string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock for err.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{text: sawchat.ErrorMessage(err), styles: styles}
}

// NewErrorTextBlock creates an ErrorBlock with a fixed message.
func NewErrorTextBlock(text string, styles Styles) *ErrorBlock {
	return &ErrorBlock{text: text, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("✗ " + b.text)
	return lipgloss.NewStyle().Width(width).Render(content)
}
