package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is a renderable element in the conversation.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
// Sent by the root model when the user presses the toggle key on a focused block.
type ToggleMsg struct{}

func collapsible(b MessageBlock) bool {
	switch b.(type) {
	case *ProgressBlock, *SQLBlock:
		return true
	}
	return false
}

// blockSeparator returns the gap between two adjacent blocks. Progress sits
// right under the question it answers; everything else gets a blank line.
func blockSeparator(prev, curr MessageBlock) string {
	if _, ok := prev.(*UserMessageBlock); ok {
		if _, ok := curr.(*ProgressBlock); ok {
			return "\n"
		}
	}
	return "\n\n"
}
