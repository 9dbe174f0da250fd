// Package goldmark renders the agent's markdown answers as ANSI-styled
// terminal text, using goldmark for parsing and lipgloss for styling.
package goldmark

import (
	"strings"

	"github.com/fwojciec/sawchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const defaultWidth = 80

// Renderer turns markdown into styled terminal text for one theme.
type Renderer struct {
	md     goldmark.Markdown
	styles styles
}

// New creates a Renderer. GFM tables and strikethrough are enabled since
// the agent reports figures as tables.
func New(theme sawchat.Theme) *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
		)),
		styles: newStyles(theme),
	}
}

// Render parses source and returns styled output. Paragraphs and list items
// wrap to width; code blocks keep their lines. Width <= 0 means 80 columns.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))
	w := &writer{source: src, st: &r.styles}
	return strings.Join(w.blocks(doc, width), "\n\n")
}

// Render is a shorthand for New(theme).Render(source, width).
func Render(source string, width int, theme sawchat.Theme) string {
	return New(theme).Render(source, width)
}
