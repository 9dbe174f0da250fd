package bubbletea

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sawchat"
	"github.com/fwojciec/sawchat/csv"
)

var _ MessageBlock = (*ArtifactBlock)(nil)

const defaultPreviewRows = 10

// ArtifactBlock offers a downloaded report: its name and size, a table
// preview of the first rows, and whether it has been saved.
type ArtifactBlock struct {
	artifact sawchat.Artifact
	preview  csv.Preview
	parseErr error
	theme    sawchat.Theme
	styles   Styles

	savedPath string
	saveErr   error

	previewByWidth map[int]string
}

// NewArtifactBlock parses the artifact for preview. A document that does not
// parse is still offered for saving.
func NewArtifactBlock(art sawchat.Artifact, rows int, theme sawchat.Theme, styles Styles) *ArtifactBlock {
	if rows <= 0 {
		rows = defaultPreviewRows
	}
	preview, err := csv.Parse(art.Data, rows)
	return &ArtifactBlock{
		artifact:       art,
		preview:        preview,
		parseErr:       err,
		theme:          theme,
		styles:         styles,
		previewByWidth: make(map[int]string),
	}
}

// Artifact returns the downloaded artifact.
func (b *ArtifactBlock) Artifact() sawchat.Artifact { return b.artifact }

// SetSaved records the outcome of a save.
func (b *ArtifactBlock) SetSaved(path string, err error) {
	b.savedPath, b.saveErr = path, err
}

// SavedPath returns where the artifact was saved, if it was.
func (b *ArtifactBlock) SavedPath() string { return b.savedPath }

func (b *ArtifactBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ArtifactBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	header := b.styles.Accent.Render("📄 "+b.artifact.Filename) +
		b.styles.Muted.Render(" ("+formatSize(len(b.artifact.Data))+")")

	var body string
	if b.parseErr != nil {
		body = b.styles.Muted.Render(fmt.Sprintf("Preview unavailable: %v", b.parseErr))
	} else {
		body = b.renderPreview(width)
	}

	var footer string
	switch {
	case b.saveErr != nil:
		footer = b.styles.Error.Render(fmt.Sprintf("Could not save the file: %v", b.saveErr))
	case b.savedPath != "":
		footer = b.styles.Success.Render("Saved to " + b.savedPath)
	default:
		footer = b.styles.Muted.Render("Ctrl+S to save")
	}
	return wrap.Render(header) + "\n" + body + "\n" + wrap.Render(footer)
}

func (b *ArtifactBlock) renderPreview(width int) string {
	if cached, ok := b.previewByWidth[width]; ok {
		return cached
	}
	rendered := csv.Render(b.preview, width, b.theme)
	b.previewByWidth[width] = rendered
	return rendered
}

func formatSize(n int) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	}
}
