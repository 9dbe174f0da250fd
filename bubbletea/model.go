package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sawchat"
	"github.com/fwojciec/sawchat/fs"
	"github.com/fwojciec/sawchat/goldmark"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates the status line while a turn runs.
	Spinner spinner.Model

	run     TurnFunc
	session *sawchat.Session
	theme   sawchat.Theme
	styles  Styles
	md      *goldmark.Renderer
	cfg     Config

	blocks      []MessageBlock
	blockFocus  int // index of focused collapsible block (-1 = none)
	suggestions *SuggestionsBlock

	// Blocks of the turn in flight.
	progress *ProgressBlock
	answer   *AssistantTextBlock
	// artifact is the latest downloaded report, the target of Ctrl+S.
	artifact *ArtifactBlock

	running  bool
	cancel   context.CancelFunc
	effectCh chan sawchat.Effect
	doneCh   chan error
	err      error
	ready    bool
}

// New creates a new TUI Model.
func New(run TurnFunc, session *sawchat.Session, theme sawchat.Theme, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "What would you like to know about the data?"
	ti.Prompt = "› "
	ti.CharLimit = 0
	if cfg.Disabled == "" {
		ti.Focus()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	styles := NewStyles(theme)
	sp.Style = styles.Progress

	m := Model{
		Input:      ti,
		Spinner:    sp,
		run:        run,
		session:    session,
		theme:      theme,
		styles:     styles,
		md:         goldmark.New(theme),
		cfg:        cfg,
		blockFocus: -1,
	}

	items := cfg.Suggestions
	if items == nil {
		items = DefaultSuggestions
	}
	if len(items) > 0 && cfg.Disabled == "" && !session.HasUserMessage() {
		m.suggestions = NewSuggestionsBlock(items, styles)
	}
	return m
}

// Running returns whether a turn is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last turn, if any.
func (m Model) Err() error { return m.err }

// Blocks returns the rendered conversation blocks.
func (m Model) Blocks() []MessageBlock { return m.blocks }

// SetRunning is a test helper that puts the model in a running state.
func SetRunning(m Model) (Model, tea.Cmd) {
	m.running = true
	m.progress = NewProgressBlock(m.styles)
	m.blocks = append(m.blocks, m.progress)
	return m, nil
}

// SetRunningWithCancel is a test helper that puts the model in a running state
// with a cancel function.
func SetRunningWithCancel(m Model, cancel func()) (Model, tea.Cmd) {
	m, cmd := SetRunning(m)
	m.cancel = cancel
	return m, cmd
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case EffectMsg:
		m = m.processEffect(msg.Effect)
		m = m.refresh()
		if m.effectCh != nil {
			return m, listenForEffect(m.effectCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		m = m.finishTurn(msg.Err)
		m = m.refresh()
		return m, m.Input.Focus()

	case ArtifactSavedMsg:
		if m.artifact != nil {
			m.artifact.SetSaved(msg.Path, msg.Err)
			m = m.refresh()
		}
		return m, nil
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = max(msg.Width-lenPrompt(m.Input)-1, 1)
	return m
}

func lenPrompt(ti textinput.Model) int {
	return runewidth.StringWidth(ti.Prompt)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running || m.cfg.Disabled != "" {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if m.suggestions != nil {
			if q, ok := m.suggestions.Pick(text); ok {
				text = q
			}
		}
		return m.submit(text)

	case tea.KeyCtrlS:
		if m.running || m.artifact == nil {
			return m, nil
		}
		return m, saveArtifact(m.cfg.DownloadDir, m.artifact.Artifact())

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// When idle, pass keys to both input (for typing) and viewport
	// (for scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.cfg.Disabled == "" {
			m.Input, cmd = m.Input.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submit(prompt string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.suggestions = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(prompt, m.styles))
	m.progress = NewProgressBlock(m.styles)
	m.blocks = append(m.blocks, m.progress)
	m.answer = nil
	m = m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.effectCh = make(chan sawchat.Effect, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startTurn(ctx, m.run, m.session, prompt, m.effectCh, m.doneCh),
		listenForEffect(m.effectCh, m.doneCh),
		m.Spinner.Tick,
	)
}

// processEffect routes a turn effect to the blocks of the current turn.
func (m Model) processEffect(eff sawchat.Effect) Model {
	switch e := eff.(type) {
	case sawchat.EffectProgress:
		if m.progress != nil {
			m.progress.Add(sawchat.Sanitize(e.Label))
		}
	case sawchat.EffectAnswer:
		if m.answer == nil {
			m.answer = NewAssistantTextBlock(m.md)
			m.blocks = append(m.blocks, m.answer)
		}
		// The whole buffer is sanitized so a sequence split across deltas
		// is stripped once complete.
		text := sawchat.Sanitize(e.Text)
		if prev := m.answer.Text(); strings.HasPrefix(text, prev) {
			m.answer.Append(text[len(prev):])
		} else {
			m.answer.Replace(text)
		}
	case sawchat.EffectFinal:
		text := sawchat.Sanitize(e.Answer.Text)
		switch {
		case m.answer == nil:
			m.answer = NewAssistantTextBlock(m.md)
			m.answer.Append(text)
			m.blocks = append(m.blocks, m.answer)
		case m.answer.Text() != text:
			m.answer.Replace(text)
		}
		if m.progress != nil {
			m.progress.Complete()
		}
		if e.Answer.SQL != "" {
			m.blocks = append(m.blocks, NewSQLBlock(sawchat.Sanitize(e.Answer.SQL), m.md, m.styles))
		}
	case sawchat.EffectArtifact:
		m.artifact = NewArtifactBlock(e.Artifact, m.cfg.PreviewRows, m.theme, m.styles)
		m.blocks = append(m.blocks, m.artifact)
	case sawchat.EffectArtifactError:
		m.blocks = append(m.blocks, NewErrorTextBlock(fmt.Sprintf("Could not download the file: %v", e.Err), m.styles))
	}
	return m.updateBlockFocus()
}

func (m Model) finishTurn(err error) Model {
	m.running = false
	m.cancel = nil
	m.effectCh = nil
	m.doneCh = nil

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		if m.progress != nil {
			m.progress.Fail(LabelCancelled)
		}
	default:
		m.err = err
		if m.progress != nil && m.progress.Running() {
			m.progress.Fail("")
		}
		m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
	}
	m.progress = nil
	m.answer = nil
	return m.updateBlockFocus()
}

func (m Model) refresh() Model {
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

// renderSession creates blocks from the session history.
func (m Model) renderSession() Model {
	for _, msg := range m.session.History() {
		switch msg.Role {
		case sawchat.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(sawchat.Sanitize(msg.Content), m.styles))
		case sawchat.RoleAssistant:
			b := NewAssistantTextBlock(m.md)
			b.Append(sawchat.Sanitize(msg.Content))
			m.blocks = append(m.blocks, b)
		}
	}
	if sql := m.session.LastSQL(); sql != "" {
		m.blocks = append(m.blocks, NewSQLBlock(sawchat.Sanitize(sql), m.md, m.styles))
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	var b strings.Builder
	if m.suggestions != nil {
		b.WriteString(m.suggestions.View(m.Viewport.Width))
		if len(m.blocks) > 0 {
			b.WriteString("\n\n")
		}
	}
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// updateBlockFocus scans backwards to find the last collapsible block.
// Only the focused block responds to Tab. ShiftTab cycles to the previous
// collapsible block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if collapsible(m.blocks[i]) {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous collapsible block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	if len(m.blocks) == 0 {
		return m
	}
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if collapsible(m.blocks[idx]) {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	switch {
	case m.cfg.Disabled != "":
		return m.styles.Error.Render(truncate("⚠ "+m.cfg.Disabled, width))
	case m.running:
		label := LabelSending
		if m.progress != nil && m.progress.Label() != "" {
			label = m.progress.Label()
		}
		prefix := m.Spinner.View() + " "
		return prefix + m.styles.Progress.Render(truncate(label, width-runewidth.StringWidth(prefix)))
	case m.err != nil:
		return m.styles.Error.Render(truncate("Error: "+sawchat.ErrorMessage(m.err), width))
	case m.artifact != nil && m.artifact.SavedPath() == "":
		return m.styles.Muted.Render(truncate("Enter to send, Ctrl+S to save report, Ctrl+C to quit", width))
	default:
		return m.styles.Muted.Render(truncate("Enter to send, Ctrl+C to quit", width))
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// startTurn runs the turn in a goroutine and signals completion.
func startTurn(ctx context.Context, run TurnFunc, session *sawchat.Session, prompt string, effectCh chan<- sawchat.Effect, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, session, prompt, func(e sawchat.Effect) {
			select {
			case effectCh <- e:
			case <-ctx.Done():
			}
		})
		close(effectCh)
		doneCh <- err
		return nil
	}
}

// listenForEffect waits for the next effect from the channel.
// When the channel closes, it reads the error from doneCh and returns TurnDoneMsg.
func listenForEffect(ch <-chan sawchat.Effect, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		eff, ok := <-ch
		if !ok {
			err := <-doneCh
			return TurnDoneMsg{Err: err}
		}
		return EffectMsg{Effect: eff}
	}
}

// saveArtifact writes the artifact into dir under its own base name.
func saveArtifact(dir string, art sawchat.Artifact) tea.Cmd {
	return func() tea.Msg {
		path, err := fs.SaveArtifact(dir, art)
		return ArtifactSavedMsg{Path: path, Err: err}
	}
}
