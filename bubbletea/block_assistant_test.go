package bubbletea_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sawchat"
	bt "github.com/fwojciec/sawchat/bubbletea"
	"github.com/fwojciec/sawchat/goldmark"
	"github.com/stretchr/testify/assert"
)

func newAssistantBlock() *bt.AssistantTextBlock {
	return bt.NewAssistantTextBlock(goldmark.New(sawchat.DefaultTheme()))
}

func TestAssistantTextBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders markdown", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello **world**")
		view := block.View(80)
		assert.Contains(t, view, "hello")
		assert.Contains(t, view, "world")
		assert.NotContains(t, view, "**")
	})

	t.Run("append accumulates deltas", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("Hel")
		block.Append("lo")
		assert.Equal(t, "Hello", block.Text())
		assert.Contains(t, block.View(80), "Hello")
	})

	t.Run("replace swaps content", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("draft paragraph\n\nmore")
		block.Replace("final")
		assert.Equal(t, "final", block.Text())
		view := block.View(80)
		assert.Contains(t, view, "final")
		assert.NotContains(t, view, "draft")
	})

	t.Run("wraps paragraphs to width", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("short words that keep going and going beyond thirty columns easily")
		view := block.View(30)
		assert.Contains(t, view, "easily")
	})

	t.Run("stable paragraph stays while the tail streams", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("first paragraph\n\n")
		block.Append("trailing")
		view := block.View(80)
		assert.Contains(t, view, "first paragraph")
		assert.Contains(t, view, "trailing")
	})

	t.Run("width change re-renders cached content", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("word1 word2 word3 word4 word5 word6\n\ntail")
		narrow := block.View(20)
		wide := block.View(80)
		assert.NotEqual(t, strings.Count(narrow, "\n"), strings.Count(wide, "\n"))
	})

	t.Run("content ending at paragraph boundary has no spurious whitespace", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("complete paragraph\n\n")
		want := goldmark.Render("complete paragraph", 80, sawchat.DefaultTheme())
		assert.Equal(t, strings.TrimRight(want, "\n"), strings.TrimRight(block.View(80), "\n"))
	})

	t.Run("unclosed fenced code block renders safely", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("```sql\nSELECT count(*)")
		view := block.View(80)
		assert.Contains(t, view, "SELECT count(*)")
		assert.NotContains(t, view, "```")
	})

	t.Run("blank line inside code fence does not split the stable prefix", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("text\n\n```sql\nSELECT 1\n\nFROM t")
		view := stripANSI(block.View(80))
		assert.Contains(t, view, "text")
		assert.Contains(t, view, "│ FROM t")
	})

	t.Run("markdown table renders as a table", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("| Specialty | Visits |\n|---|---|\n| Cardiology | 120 |")
		view := stripANSI(block.View(80))
		assert.Contains(t, view, "Cardiology")
		assert.NotContains(t, view, "|---|")
	})

	t.Run("update returns self with no command", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello")
		updated, cmd := block.Update(tea.KeyMsg{})
		assert.Equal(t, block, updated)
		assert.Nil(t, cmd)
	})

	t.Run("empty content renders empty string", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, newAssistantBlock().View(80))
	})

	t.Run("zero width renders gracefully", func(t *testing.T) {
		t.Parallel()
		block := newAssistantBlock()
		block.Append("hello world")
		assert.NotPanics(t, func() { block.View(0) })
	})
}
