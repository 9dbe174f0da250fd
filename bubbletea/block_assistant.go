package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sawchat/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders the streamed answer as markdown.
// Paragraphs closed by a blank line are rendered once per width and cached;
// only the open tail is re-rendered on each delta.
type AssistantTextBlock struct {
	content strings.Builder
	md      *goldmark.Renderer

	// stable is the prefix ending at the last paragraph break outside a
	// code fence.
	stable        string
	stableByWidth map[int]string
}

// NewAssistantTextBlock creates a block rendering with md.
func NewAssistantTextBlock(md *goldmark.Renderer) *AssistantTextBlock {
	return &AssistantTextBlock{
		md:            md,
		stableByWidth: make(map[int]string),
	}
}

// Append adds a streamed answer fragment.
func (b *AssistantTextBlock) Append(text string) {
	b.content.WriteString(text)
	b.promote()
}

// Replace swaps the whole content, for a final answer that differs from
// what was streamed.
func (b *AssistantTextBlock) Replace(text string) {
	b.content.Reset()
	b.stable = ""
	clear(b.stableByWidth)
	b.Append(text)
}

// Text returns the raw markdown received so far.
func (b *AssistantTextBlock) Text() string {
	return b.content.String()
}

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	stable := b.renderStable(width)
	tail := b.tail()
	if hasUnclosedFence(tail) {
		// Close the fence for display only so partial code renders as code.
		tail += "\n```"
	}
	if strings.TrimSpace(tail) == "" {
		return stable
	}
	rendered := b.md.Render(tail, width)
	if strings.TrimSpace(rendered) == "" {
		return stable
	}
	if stable == "" {
		return rendered
	}
	return strings.TrimRight(stable, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promote moves the stable prefix forward to the last "\n\n" whose prefix
// has every code fence closed.
func (b *AssistantTextBlock) promote() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantTextBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	rendered := b.md.Render(b.stable, width)
	b.stableByWidth[width] = rendered
	return rendered
}

func (b *AssistantTextBlock) tail() string {
	raw := b.content.String()
	if b.stable == "" {
		return raw
	}
	return strings.TrimPrefix(raw, b.stable+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" markers. Triple backticks
// inside inline code are miscounted; answers rarely contain them.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
