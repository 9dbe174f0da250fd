package bubbletea_test

import (
	"context"
	"regexp"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sawchat"
	bt "github.com/fwojciec/sawchat/bubbletea"
	"github.com/stretchr/testify/require"
)

// noSuggestions keeps test views free of the suggestion list.
var noSuggestions = bt.Config{Suggestions: []string{}}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.TurnFunc) bt.Model {
	t.Helper()
	return initModelWith(t, run, sawchat.NewSession(), noSuggestions, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run bt.TurnFunc, width, height int) bt.Model {
	t.Helper()
	return initModelWith(t, run, sawchat.NewSession(), noSuggestions, width, height)
}

// initModelWith creates a model for the given session and config.
func initModelWith(t *testing.T, run bt.TurnFunc, session *sawchat.Session, cfg bt.Config, width, height int) bt.Model {
	t.Helper()
	m := bt.New(run, session, sawchat.DefaultTheme(), cfg)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// effect wraps an effect as a message.
func effect(e sawchat.Effect) bt.EffectMsg {
	return bt.EffectMsg{Effect: e}
}

// nopTurn is a turn that does nothing.
func nopTurn(_ context.Context, _ *sawchat.Session, _ string, _ func(sawchat.Effect)) error {
	return nil
}

func stripANSI(s string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	return re.ReplaceAllString(s, "")
}

// submit presses Enter and drops the returned command so no turn runs.
func submit(t *testing.T, m bt.Model) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}
