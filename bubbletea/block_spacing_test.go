package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/sawchat"
	bt "github.com/fwojciec/sawchat/bubbletea"
	"github.com/fwojciec/sawchat/goldmark"
	"github.com/stretchr/testify/assert"
)

func TestBlockSeparator(t *testing.T) {
	t.Parallel()

	theme := sawchat.DefaultTheme()
	styles := bt.NewStyles(theme)

	user := bt.NewUserMessageBlock("hi", styles)
	progress := bt.NewProgressBlock(styles)
	text := bt.NewAssistantTextBlock(goldmark.New(theme))
	sql := bt.NewSQLBlock("SELECT 1", goldmark.New(theme), styles)
	errBlock := bt.NewErrorBlock(assert.AnError, styles)

	t.Run("user then progress", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "\n", bt.BlockSeparator(user, progress))
	})

	t.Run("progress then text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "\n\n", bt.BlockSeparator(progress, text))
	})

	t.Run("text then sql", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "\n\n", bt.BlockSeparator(text, sql))
	})

	t.Run("user then text", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "\n\n", bt.BlockSeparator(user, text))
	})

	t.Run("progress then error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "\n\n", bt.BlockSeparator(progress, errBlock))
	})

	t.Run("sql then user", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "\n\n", bt.BlockSeparator(sql, user))
	})
}

func TestModel_BlockSpacing(t *testing.T) {
	t.Parallel()

	t.Run("progress sits under the question", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m.Input.SetValue("how many visits?")
		m = submit(t, m)

		content := stripANSI(bt.RenderContent(m))
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			if strings.Contains(line, "how many visits?") {
				assert.Less(t, i+1, len(lines))
				assert.Contains(t, lines[i+1], bt.LabelSending)
				return
			}
		}
		t.Fatalf("question not rendered:\n%s", content)
	})

	t.Run("answer is separated by a blank line", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m.Input.SetValue("q")
		m = submit(t, m)
		m = updateModel(t, m, effect(sawchat.EffectAnswer{Delta: "hello", Text: "hello"}))

		content := bt.RenderContent(m)
		assert.Contains(t, content, "\n\n")
		lines := strings.Split(content, "\n")
		for i := 0; i+1 < len(lines); i++ {
			if lines[i] == "" && lines[i+1] == "" {
				t.Errorf("found consecutive blank lines at line %d in:\n%s", i, content)
				break
			}
		}
	})
}
