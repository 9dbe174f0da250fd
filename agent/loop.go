// Package agent runs conversation turns against a sawchat.Agent and folds
// the results into a Session.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sawchat"
	"golang.org/x/time/rate"
)

// ErrNoBatchAgent is returned by Ask when the loop has no batch agent.
var ErrNoBatchAgent = errors.New("agent: batch mode not configured")

// Loop executes one turn at a time for a session.
type Loop struct {
	agent   sawchat.Agent
	batch   sawchat.BatchAgent
	fetcher sawchat.ArtifactFetcher
	logger  *slog.Logger
	pacing  time.Duration
}

// Option configures a Loop.
type Option func(*Loop)

// WithBatchAgent enables Ask.
func WithBatchAgent(b sawchat.BatchAgent) Option {
	return func(l *Loop) { l.batch = b }
}

// WithFetcher downloads the artifact of answers that carry a download URL.
// Without a fetcher the URL is left to the caller.
func WithFetcher(f sawchat.ArtifactFetcher) Option {
	return func(l *Loop) { l.fetcher = f }
}

// WithLogger sets the logger for turn failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithPacing spaces rendered progress and answer updates at least d apart.
// Zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(l *Loop) { l.pacing = d }
}

// New creates a Loop streaming from the given agent.
func New(agent sawchat.Agent, opts ...Option) *Loop {
	l := &Loop{agent: agent, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOption configures a single Run or Ask invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEffect func(sawchat.Effect)
}

// WithEffectHandler sets a callback that receives each effect of the turn in
// order. If nil or not set, effects are silently discarded.
func WithEffectHandler(h func(sawchat.Effect)) RunOption {
	return func(c *runConfig) {
		c.onEffect = h
	}
}

func (c *runConfig) emit(eff sawchat.Effect) {
	if c.onEffect != nil {
		c.onEffect(eff)
	}
}

// exchangeFunc sends one request and reduces the reply to an answer.
type exchangeFunc func(ctx context.Context, req sawchat.Request, r *sawchat.Reducer, cfg *runConfig) error

// Run executes one streaming turn: it appends prompt to the session history,
// streams the reply and, on success, appends the answer. Failures leave no
// assistant entry. The session's processing flag is held for the whole turn.
func (l *Loop) Run(ctx context.Context, session *sawchat.Session, prompt string, opts ...RunOption) (sawchat.Answer, error) {
	return l.turn(ctx, session, prompt, l.stream, opts)
}

// Ask executes one turn against the batch endpoint. The reply's steps are
// reported as progress before the final answer.
func (l *Loop) Ask(ctx context.Context, session *sawchat.Session, prompt string, opts ...RunOption) (sawchat.Answer, error) {
	if l.batch == nil {
		return sawchat.Answer{}, ErrNoBatchAgent
	}
	return l.turn(ctx, session, prompt, l.ask, opts)
}

func (l *Loop) turn(ctx context.Context, session *sawchat.Session, prompt string, exchange exchangeFunc, opts []RunOption) (sawchat.Answer, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := (sawchat.Request{Prompt: prompt}).Validate(); err != nil {
		return sawchat.Answer{}, err
	}
	if err := session.Begin(); err != nil {
		return sawchat.Answer{}, err
	}
	defer session.End()

	session.Append(sawchat.UserMessage(prompt))
	req := sawchat.Request{Prompt: prompt, History: session.History()}

	start := time.Now()
	reducer := sawchat.NewReducer()
	if err := exchange(ctx, req, reducer, &cfg); err != nil {
		reducer.Fail(err)
	}
	answer, err := reducer.Answer()
	if err != nil {
		l.logger.Error("turn failed",
			"session", session.ID,
			"progress", reducer.Progress(),
			"partial", len(reducer.Buffer()),
			"error", err,
		)
		return sawchat.Answer{}, err
	}

	session.Append(sawchat.AssistantMessage(answer.Text))
	session.SetLastSQL(answer.SQL)
	l.logger.Debug("turn completed", "session", session.ID, "duration", time.Since(start))

	if answer.DownloadURL != "" && l.fetcher != nil {
		l.fetchArtifact(ctx, answer.DownloadURL, &cfg)
	}
	return answer, nil
}

// stream drains the agent's stream through the reducer. It stops reading at
// the first answer_final.
func (l *Loop) stream(ctx context.Context, req sawchat.Request, r *sawchat.Reducer, cfg *runConfig) error {
	stream, err := l.agent.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	limiter := l.limiter()
	for !r.Finished() {
		evt, err := stream.Next()
		if err == io.EOF {
			r.End()
			return nil
		}
		if err != nil {
			return err
		}
		if err := l.apply(ctx, r, evt, limiter, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ask replays the batch reply through the reducer as if it had been
// streamed: one step event per step, then the final answer.
func (l *Loop) ask(ctx context.Context, req sawchat.Request, r *sawchat.Reducer, cfg *runConfig) error {
	resp, err := l.batch.Ask(ctx, req)
	if err != nil {
		return err
	}
	limiter := l.limiter()
	for _, step := range resp.Steps {
		if err := l.apply(ctx, r, sawchat.EventStep{Step: step}, limiter, cfg); err != nil {
			return err
		}
	}
	return l.apply(ctx, r, sawchat.EventAnswerFinal{Answer: resp.Answer, SQL: resp.SQL}, limiter, cfg)
}

func (l *Loop) apply(ctx context.Context, r *sawchat.Reducer, evt sawchat.Event, limiter *rate.Limiter, cfg *runConfig) error {
	effects := r.Apply(evt)
	if len(effects) == 0 {
		return nil
	}
	if limiter != nil && !r.Finished() {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	for _, eff := range effects {
		cfg.emit(eff)
	}
	return nil
}

func (l *Loop) limiter() *rate.Limiter {
	if l.pacing <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(l.pacing), 1)
}

func (l *Loop) fetchArtifact(ctx context.Context, url string, cfg *runConfig) {
	art, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		l.logger.Warn("artifact download failed", "url", url, "error", err)
		cfg.emit(sawchat.EffectArtifactError{URL: url, Err: err})
		return
	}
	cfg.emit(sawchat.EffectArtifact{Artifact: art})
}
