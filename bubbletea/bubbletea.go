// Package bubbletea provides a Bubble Tea TUI for chatting with the agent.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sawchat"
)

// TurnFunc runs one conversation turn for prompt. The onEffect callback is
// called for each effect in order. The function blocks until the turn ends
// or the context is cancelled. It owns all session mutation.
type TurnFunc func(ctx context.Context, session *sawchat.Session, prompt string, onEffect func(sawchat.Effect)) error

// DefaultSuggestions are the quick questions offered before the first prompt.
var DefaultSuggestions = []string{
	"How many appointments were made today?",
	"What was the average number of appointments this month?",
	"What is the specialty ranking for last month?",
	"Total appointment value by provider in the last 7 days.",
	"Top 5 medical specialties by sex last month",
}

// Config holds TUI settings beyond the theme.
type Config struct {
	// DownloadDir is where Ctrl+S saves the latest artifact. Empty means the
	// working directory.
	DownloadDir string
	// Suggestions are shown until the user asks something. Nil means
	// DefaultSuggestions; an empty non-nil slice shows none.
	Suggestions []string
	// Disabled, when set, blocks input and is shown as a warning. Used when
	// no API key is configured.
	Disabled string
	// PreviewRows bounds the CSV preview of artifacts. Zero means 10.
	PreviewRows int
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EffectMsg wraps a turn effect for delivery to the Bubble Tea model.
type EffectMsg struct {
	Effect sawchat.Effect
}

// TurnDoneMsg signals that the turn has completed.
type TurnDoneMsg struct {
	Err error
}

// ArtifactSavedMsg reports the result of saving an artifact to disk.
type ArtifactSavedMsg struct {
	Path string
	Err  error
}
