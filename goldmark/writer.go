package goldmark

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// minItemWidth keeps deeply nested list items readable on narrow terminals.
const minItemWidth = 10

// writer renders one parsed document.
type writer struct {
	source []byte
	st     *styles
}

// blocks renders the block children of parent, skipping empty ones.
func (w *writer) blocks(parent ast.Node, width int) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if s := w.block(c, width); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (w *writer) block(node ast.Node, width int) string {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(w.inlines(n), width)
	case *ast.Heading:
		return wrap(w.st.heading.Render(w.inlines(n)), width)
	case *ast.FencedCodeBlock:
		return w.code(n, string(n.Language(w.source)))
	case *ast.CodeBlock:
		return w.code(n, "")
	case *ast.List:
		return w.list(n, width, 0)
	case *ast.Blockquote:
		gutter := w.st.muted.Render("▎") + " "
		inner := strings.Join(w.blocks(n, max(width-2, minItemWidth)), "\n\n")
		return indentLines(inner, gutter, gutter)
	case *ast.ThematicBreak:
		return w.st.muted.Render(strings.Repeat("─", min(width, 40)))
	case *extast.Table:
		return w.table(n, width)
	case *ast.HTMLBlock:
		return strings.TrimRight(w.lines(n), "\n")
	default:
		return strings.Join(w.blocks(node, width), "\n\n")
	}
}

// code renders a code block behind a gutter without reflowing it. SQL blocks
// get the SQL accent on their label.
func (w *writer) code(n ast.Node, lang string) string {
	var b strings.Builder
	if lang != "" {
		label := w.st.muted
		if strings.EqualFold(lang, "sql") {
			label = w.st.sqlLabel
		}
		b.WriteString(label.Render(lang))
		b.WriteByte('\n')
	}
	gutter := w.st.muted.Render("│") + " "
	body := strings.TrimRight(w.lines(n), "\n")
	b.WriteString(indentLines(body, gutter, gutter))
	return b.String()
}

func (w *writer) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

func (w *writer) list(n *ast.List, width, depth int) string {
	var items []string
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		items = append(items, w.item(item, width, depth, marker))
	}
	return strings.Join(items, "\n")
}

// item renders a list item with a hanging indent under its marker.
func (w *writer) item(item *ast.ListItem, width, depth int, marker string) string {
	prefix := strings.Repeat("  ", depth) + marker
	cont := strings.Repeat(" ", len(prefix))
	inner := max(width-len(prefix), minItemWidth)

	var parts []string
	lead := prefix
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if sub, ok := c.(*ast.List); ok {
			parts = append(parts, w.list(sub, width, depth+1))
			continue
		}
		parts = append(parts, indentLines(w.block(c, inner), lead, cont))
		lead = cont
	}
	if len(parts) == 0 {
		return prefix
	}
	return strings.Join(parts, "\n")
}

func (w *writer) table(n *extast.Table, width int) string {
	var headers []string
	var rows [][]string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var cells []string
		for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, w.inlines(cell))
		}
		switch c.(type) {
		case *extast.TableHeader:
			headers = cells
		case *extast.TableRow:
			rows = append(rows, cells)
		}
	}

	aligns := n.Alignments
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(w.st.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				s = w.st.tableHeader.Padding(0, 1)
			}
			if col < len(aligns) {
				s = s.Align(position(aligns[col]))
			}
			return s
		})
	out := t.String()
	if lipgloss.Width(out) > width {
		out = t.Width(width).String()
	}
	return out
}

func position(a extast.Alignment) lipgloss.Position {
	switch a {
	case extast.AlignRight:
		return lipgloss.Right
	case extast.AlignCenter:
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}

// inlines collects the styled inline text of a node's children.
func (w *writer) inlines(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c, &b)
	}
	return b.String()
}

func (w *writer) inline(node ast.Node, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		style := w.st.bold
		if n.Level == 1 {
			style = w.st.italic
		}
		b.WriteString(style.Render(w.inlines(n)))
	case *extast.Strikethrough:
		b.WriteString(w.st.strike.Render(w.inlines(n)))
	case *ast.CodeSpan:
		b.WriteString(w.st.code.Render(w.inlines(n)))
	case *ast.Link:
		w.link(b, w.inlines(n), string(n.Destination))
	case *ast.Image:
		w.link(b, w.inlines(n), string(n.Destination))
	case *ast.AutoLink:
		b.WriteString(w.st.link.Render(string(n.URL(w.source))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.source))
		}
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.inline(c, b)
		}
	}
}

func (w *writer) link(b *strings.Builder, label, url string) {
	if label == "" || label == url {
		b.WriteString(w.st.link.Render(url))
		return
	}
	b.WriteString(w.st.link.Render(label))
	b.WriteString(" ")
	b.WriteString(w.st.muted.Render("(" + url + ")"))
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// indentLines prefixes the first line with first and the others with rest.
func indentLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
