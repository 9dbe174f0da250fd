package bubbletea

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ProgressBlock)(nil)

// Labels shown by a ProgressBlock outside the agent's own progress labels.
const (
	LabelSending   = "Sending question to the agent..."
	LabelComplete  = "Answer generated!"
	LabelCancelled = "Cancelled."
	LabelFailed    = "Failed."
)

type progressState int

const (
	progressRunning progressState = iota
	progressComplete
	progressFailed
)

// ProgressBlock shows what the agent is doing during a turn. The header is
// the current label; expanding it lists every label of the turn.
type ProgressBlock struct {
	labels    []string
	state     progressState
	collapsed bool
	styles    Styles
}

// NewProgressBlock creates a ProgressBlock that starts collapsed.
func NewProgressBlock(styles Styles) *ProgressBlock {
	return &ProgressBlock{collapsed: true, styles: styles}
}

// Add records a progress label. Repeats of the current label are dropped.
func (b *ProgressBlock) Add(label string) {
	if label == "" || b.Label() == label {
		return
	}
	b.labels = append(b.labels, label)
}

// Label returns the current progress label.
func (b *ProgressBlock) Label() string {
	if len(b.labels) == 0 {
		return ""
	}
	return b.labels[len(b.labels)-1]
}

// Labels returns every label recorded so far.
func (b *ProgressBlock) Labels() []string {
	return slices.Clone(b.labels)
}

// Complete marks the turn as answered.
func (b *ProgressBlock) Complete() { b.state = progressComplete }

// Fail marks the turn as failed, optionally recording a closing label.
func (b *ProgressBlock) Fail(label string) {
	b.Add(label)
	b.state = progressFailed
}

// Running reports whether the turn is still in flight.
func (b *ProgressBlock) Running() bool { return b.state == progressRunning }

func (b *ProgressBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ProgressBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	var header string
	switch b.state {
	case progressComplete:
		header = b.styles.Success.Render("✓ "+LabelComplete) +
			b.styles.Muted.Render(fmt.Sprintf(" (%d %s)", len(b.labels), plural(len(b.labels), "step", "steps")))
	case progressFailed:
		header = b.styles.Error.Render("✗ " + cmp.Or(b.Label(), LabelFailed))
	default:
		header = b.styles.Progress.Render(cmp.Or(b.Label(), LabelSending))
	}
	header = wrap.Render(b.styles.Muted.Render(indicator) + " " + header)
	if b.collapsed || len(b.labels) == 0 {
		return header
	}

	lines := make([]string, len(b.labels))
	for i, label := range b.labels {
		lines[i] = "  · " + label
	}
	return header + "\n" + b.styles.Muted.Render(wrap.Render(strings.Join(lines, "\n")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
