// Package csv previews CSV artifacts as terminal tables.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/sawchat"
)

// ErrEmpty is returned by Parse when the document has no header row.
var ErrEmpty = errors.New("csv: empty document")

var bom = []byte("\xef\xbb\xbf")

// Preview is the head of a CSV document.
type Preview struct {
	Header []string
	Rows   [][]string
	Total  int // data rows in the whole document
}

// More returns how many data rows the preview leaves out.
func (p Preview) More() int {
	return p.Total - len(p.Rows)
}

// Parse reads the header and up to maxRows data rows, counting the rest.
// maxRows <= 0 keeps every row. Quotes are parsed leniently and rows may
// differ in length; short rows are padded. A semicolon delimiter is used
// when the header has more semicolons than commas.
func Parse(data []byte, maxRows int) (Preview, error) {
	data = bytes.TrimPrefix(data, bom)

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.Comma = sniffDelimiter(data)

	header, err := r.Read()
	if err == io.EOF {
		return Preview{}, ErrEmpty
	}
	if err != nil {
		return Preview{}, fmt.Errorf("csv: header: %w", err)
	}

	p := Preview{Header: header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Preview{}, fmt.Errorf("csv: row %d: %w", p.Total+1, err)
		}
		p.Total++
		if maxRows <= 0 || len(p.Rows) < maxRows {
			p.Rows = append(p.Rows, rec)
		}
	}
	p.normalize()
	return p, nil
}

// normalize pads the header and rows to a common column count and makes
// every cell a single line of printable text.
func (p *Preview) normalize() {
	cols := len(p.Header)
	for _, row := range p.Rows {
		cols = max(cols, len(row))
	}
	p.Header = clean(p.Header, cols)
	for i, row := range p.Rows {
		p.Rows[i] = clean(row, cols)
	}
}

func clean(row []string, n int) []string {
	for i, cell := range row {
		row[i] = strings.ReplaceAll(sawchat.Sanitize(cell), "\n", " ")
	}
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// Render draws the preview as a table no wider than width, followed by a
// note on the rows left out.
func Render(p Preview, width int, theme sawchat.Theme) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(theme.Muted)))
	header := lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(theme.Accent))).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(muted).
		Headers(p.Header...).
		Rows(p.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col < len(p.Header) && isNumeric(p.Rows[row][col]) {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})
	out := t.String()
	if width > 0 && lipgloss.Width(out) > width {
		out = t.Width(width).String()
	}

	if more := p.More(); more > 0 {
		noun := "rows"
		if more == 1 {
			noun = "row"
		}
		out += "\n" + muted.Render(fmt.Sprintf("… %d more %s", more, noun))
	}
	return out
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return err == nil
}
