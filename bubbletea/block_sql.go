package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sawchat/goldmark"
)

var _ MessageBlock = (*SQLBlock)(nil)

// SQLBlock shows the SQL the agent ran for an answer, collapsed by default.
type SQLBlock struct {
	sql       string
	md        *goldmark.Renderer
	collapsed bool
	styles    Styles
}

// NewSQLBlock creates a collapsed SQLBlock.
func NewSQLBlock(sql string, md *goldmark.Renderer, styles Styles) *SQLBlock {
	return &SQLBlock{sql: sql, md: md, collapsed: true, styles: styles}
}

// SQL returns the query text.
func (b *SQLBlock) SQL() string { return b.sql }

func (b *SQLBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *SQLBlock) View(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := b.styles.Muted.Render(indicator) + " " + b.styles.SQL.Render("SQL used in this answer")
	if b.collapsed {
		return header
	}
	return header + "\n" + b.md.Render("```sql\n"+b.sql+"\n```", width)
}
