package agent_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sawchat"
	"github.com/fwojciec/sawchat/agent"
	"github.com/fwojciec/sawchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamingAgent returns a mock agent whose stream yields events, then err.
func streamingAgent(err error, events ...sawchat.Event) *mock.Agent {
	return &mock.Agent{
		StreamFn: func(_ context.Context, _ sawchat.Request) (sawchat.Stream, error) {
			return mock.Events(err, events...), nil
		},
	}
}

// recordEffects returns a run option collecting effects into the slice.
func recordEffects(effects *[]sawchat.Effect) agent.RunOption {
	return agent.WithEffectHandler(func(e sawchat.Effect) {
		*effects = append(*effects, e)
	})
}

func TestLoop_Run(t *testing.T) {
	t.Parallel()

	t.Run("streamed answer is appended to history", func(t *testing.T) {
		t.Parallel()

		a := streamingAgent(nil,
			sawchat.EventStart{Message: "Go"},
			sawchat.EventAnswerDelta{Text: "Hel"},
			sawchat.EventAnswerDelta{Text: "lo"},
			sawchat.EventAnswerFinal{SQL: "SELECT 1"},
		)
		session := sawchat.NewSession()
		var effects []sawchat.Effect

		answer, err := agent.New(a).Run(context.Background(), session, "Hi", recordEffects(&effects))
		require.NoError(t, err)

		assert.Equal(t, sawchat.Answer{Text: "Hello", SQL: "SELECT 1"}, answer)
		assert.Equal(t, []sawchat.Message{
			sawchat.UserMessage("Hi"),
			sawchat.AssistantMessage("Hello"),
		}, session.History())
		assert.Equal(t, "SELECT 1", session.LastSQL())
		assert.False(t, session.Processing())
		assert.Equal(t, []sawchat.Effect{
			sawchat.EffectProgress{Label: "Go"},
			sawchat.EffectAnswer{Delta: "Hel", Text: "Hel"},
			sawchat.EffectAnswer{Delta: "lo", Text: "Hello"},
			sawchat.EffectFinal{Answer: answer},
		}, effects)
	})

	t.Run("request carries full history including prompt", func(t *testing.T) {
		t.Parallel()

		session := sawchat.NewSession()
		session.Append(sawchat.UserMessage("Hello"))
		session.Append(sawchat.AssistantMessage("Hi"))

		var got sawchat.Request
		a := &mock.Agent{
			StreamFn: func(_ context.Context, req sawchat.Request) (sawchat.Stream, error) {
				got = req
				return mock.Events(nil, sawchat.EventAnswerFinal{Answer: "ok"}), nil
			},
		}

		_, err := agent.New(a).Run(context.Background(), session, "Thanks")
		require.NoError(t, err)

		assert.Equal(t, "Thanks", got.Prompt)
		assert.Equal(t, []sawchat.Message{
			sawchat.UserMessage("Hello"),
			sawchat.AssistantMessage("Hi"),
			sawchat.UserMessage("Thanks"),
		}, got.History)
	})

	t.Run("final answer text wins over deltas", func(t *testing.T) {
		t.Parallel()

		a := streamingAgent(nil,
			sawchat.EventAnswerDelta{Text: "draft"},
			sawchat.EventAnswerFinal{Answer: "final"},
		)
		session := sawchat.NewSession()

		answer, err := agent.New(a).Run(context.Background(), session, "Hi")
		require.NoError(t, err)
		assert.Equal(t, "final", answer.Text)
		assert.Equal(t, sawchat.AssistantMessage("final"), session.History()[1])
	})

	t.Run("stops reading at first final", func(t *testing.T) {
		t.Parallel()

		var reads atomic.Int32
		events := []sawchat.Event{
			sawchat.EventAnswerFinal{Answer: "one"},
			sawchat.EventAnswerDelta{Text: "late"},
			sawchat.EventAnswerFinal{Answer: "two"},
		}
		closed := false
		a := &mock.Agent{
			StreamFn: func(_ context.Context, _ sawchat.Request) (sawchat.Stream, error) {
				return &mock.Stream{
					NextFn: func() (sawchat.Event, error) {
						i := reads.Add(1) - 1
						if int(i) >= len(events) {
							return nil, io.EOF
						}
						return events[i], nil
					},
					CloseFn: func() error {
						closed = true
						return nil
					},
				}, nil
			},
		}
		session := sawchat.NewSession()

		answer, err := agent.New(a).Run(context.Background(), session, "Hi")
		require.NoError(t, err)
		assert.Equal(t, "one", answer.Text)
		assert.Equal(t, int32(1), reads.Load())
		assert.True(t, closed)
	})

	t.Run("interrupted stream leaves no assistant entry", func(t *testing.T) {
		t.Parallel()

		a := streamingAgent(sawchat.ErrStreamInterrupted,
			sawchat.EventStart{Message: "Go"},
			sawchat.EventAnswerDelta{Text: "partial"},
		)
		session := sawchat.NewSession()
		var effects []sawchat.Effect

		_, err := agent.New(a).Run(context.Background(), session, "Hi", recordEffects(&effects))
		require.Error(t, err)
		assert.ErrorIs(t, err, sawchat.ErrStreamInterrupted)
		assert.Equal(t, "connection interrupted", err.Error())

		assert.Equal(t, []sawchat.Message{sawchat.UserMessage("Hi")}, session.History())
		assert.Empty(t, session.LastSQL())
		assert.False(t, session.Processing())
		assert.Len(t, effects, 2)
	})

	t.Run("clean end without final fails", func(t *testing.T) {
		t.Parallel()

		a := streamingAgent(nil, sawchat.EventAnswerDelta{Text: "half"})
		session := sawchat.NewSession()

		_, err := agent.New(a).Run(context.Background(), session, "Hi")
		assert.ErrorIs(t, err, sawchat.ErrNoFinalAnswer)
		assert.Len(t, session.History(), 1)
		assert.False(t, session.Processing())
	})

	t.Run("stream open error is returned", func(t *testing.T) {
		t.Parallel()

		apiErr := &sawchat.APIError{StatusCode: 500, Body: "internal error"}
		a := &mock.Agent{
			StreamFn: func(_ context.Context, _ sawchat.Request) (sawchat.Stream, error) {
				return nil, apiErr
			},
		}
		session := sawchat.NewSession()
		var effects []sawchat.Effect

		_, err := agent.New(a).Run(context.Background(), session, "Hi", recordEffects(&effects))
		var got *sawchat.APIError
		require.ErrorAs(t, err, &got)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "internal error")
		assert.Empty(t, effects)
		assert.False(t, session.Processing())
	})

	t.Run("empty prompt is rejected before the session is touched", func(t *testing.T) {
		t.Parallel()

		a := &mock.Agent{}
		session := sawchat.NewSession()

		_, err := agent.New(a).Run(context.Background(), session, "   ")
		assert.ErrorIs(t, err, sawchat.ErrValidation)
		assert.Empty(t, session.History())
	})

	t.Run("busy session is rejected", func(t *testing.T) {
		t.Parallel()

		a := &mock.Agent{}
		session := sawchat.NewSession()
		require.NoError(t, session.Begin())

		_, err := agent.New(a).Run(context.Background(), session, "Hi")
		assert.ErrorIs(t, err, sawchat.ErrBusy)
		assert.Empty(t, session.History())
		assert.True(t, session.Processing())
	})

	t.Run("unknown events are ignored", func(t *testing.T) {
		t.Parallel()

		a := streamingAgent(nil,
			sawchat.EventUnknown{Type: "heartbeat"},
			sawchat.EventAnswerFinal{Answer: "ok"},
		)
		var effects []sawchat.Effect

		_, err := agent.New(a).Run(context.Background(), sawchat.NewSession(), "Hi", recordEffects(&effects))
		require.NoError(t, err)
		assert.Len(t, effects, 1)
	})
}

func TestLoop_RunArtifact(t *testing.T) {
	t.Parallel()

	finalWithURL := sawchat.EventAnswerFinal{Answer: "see file", DownloadURL: "http://h/files/report.csv"}

	t.Run("downloads artifact", func(t *testing.T) {
		t.Parallel()

		art := sawchat.Artifact{Filename: "report.csv", MimeType: sawchat.MimeCSV, Data: []byte("a\n1\n")}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (sawchat.Artifact, error) {
				assert.Equal(t, "http://h/files/report.csv", url)
				return art, nil
			},
		}
		var effects []sawchat.Effect

		answer, err := agent.New(streamingAgent(nil, finalWithURL), agent.WithFetcher(fetcher)).
			Run(context.Background(), sawchat.NewSession(), "Hi", recordEffects(&effects))
		require.NoError(t, err)
		assert.Equal(t, "http://h/files/report.csv", answer.DownloadURL)
		require.Len(t, effects, 2)
		assert.Equal(t, sawchat.EffectArtifact{Artifact: art}, effects[1])
	})

	t.Run("download failure keeps the turn", func(t *testing.T) {
		t.Parallel()

		fetchErr := errors.New("404")
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (sawchat.Artifact, error) {
				return sawchat.Artifact{}, fetchErr
			},
		}
		session := sawchat.NewSession()
		var effects []sawchat.Effect

		_, err := agent.New(streamingAgent(nil, finalWithURL), agent.WithFetcher(fetcher)).
			Run(context.Background(), session, "Hi", recordEffects(&effects))
		require.NoError(t, err)
		assert.Len(t, session.History(), 2)
		require.Len(t, effects, 2)
		assert.Equal(t, sawchat.EffectArtifactError{URL: "http://h/files/report.csv", Err: fetchErr}, effects[1])
	})

	t.Run("no fetcher means no download", func(t *testing.T) {
		t.Parallel()

		var effects []sawchat.Effect
		_, err := agent.New(streamingAgent(nil, finalWithURL)).
			Run(context.Background(), sawchat.NewSession(), "Hi", recordEffects(&effects))
		require.NoError(t, err)
		assert.Len(t, effects, 1)
	})
}

func TestLoop_Ask(t *testing.T) {
	t.Parallel()

	t.Run("batch reply renders one progress line per step", func(t *testing.T) {
		t.Parallel()

		batch := &mock.BatchAgent{
			AskFn: func(_ context.Context, req sawchat.Request) (sawchat.BatchResponse, error) {
				assert.Equal(t, "answer?", req.Prompt)
				return sawchat.BatchResponse{
					Answer: "42",
					Steps:  []sawchat.StepInfo{{Type: sawchat.StepLLM}},
				}, nil
			},
		}
		session := sawchat.NewSession()
		var effects []sawchat.Effect

		answer, err := agent.New(&mock.Agent{}, agent.WithBatchAgent(batch)).
			Ask(context.Background(), session, "answer?", recordEffects(&effects))
		require.NoError(t, err)

		assert.Equal(t, sawchat.Answer{Text: "42"}, answer)
		assert.Equal(t, []sawchat.Effect{
			sawchat.EffectProgress{Label: "Organizing the answer."},
			sawchat.EffectFinal{Answer: sawchat.Answer{Text: "42"}},
		}, effects)
		assert.Equal(t, sawchat.AssistantMessage("42"), session.History()[1])
		assert.Empty(t, session.LastSQL())
	})

	t.Run("batch error leaves no assistant entry", func(t *testing.T) {
		t.Parallel()

		batch := &mock.BatchAgent{
			AskFn: func(_ context.Context, _ sawchat.Request) (sawchat.BatchResponse, error) {
				return sawchat.BatchResponse{}, &sawchat.APIError{StatusCode: 502, Body: "bad gateway"}
			},
		}
		session := sawchat.NewSession()

		_, err := agent.New(&mock.Agent{}, agent.WithBatchAgent(batch)).Ask(context.Background(), session, "x")
		require.Error(t, err)
		assert.Len(t, session.History(), 1)
		assert.False(t, session.Processing())
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		_, err := agent.New(&mock.Agent{}).Ask(context.Background(), sawchat.NewSession(), "x")
		assert.ErrorIs(t, err, agent.ErrNoBatchAgent)
	})
}

func TestLoop_Pacing(t *testing.T) {
	t.Parallel()

	t.Run("spaces rendered updates", func(t *testing.T) {
		t.Parallel()

		a := streamingAgent(nil,
			sawchat.EventAnswerDelta{Text: "a"},
			sawchat.EventAnswerDelta{Text: "b"},
			sawchat.EventAnswerDelta{Text: "c"},
			sawchat.EventAnswerFinal{},
		)
		loop := agent.New(a, agent.WithPacing(20*time.Millisecond))

		start := time.Now()
		answer, err := loop.Run(context.Background(), sawchat.NewSession(), "Hi")
		require.NoError(t, err)
		assert.Equal(t, "abc", answer.Text)
		assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	})

	t.Run("cancellation while pacing fails the turn", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		a := streamingAgent(nil,
			sawchat.EventAnswerDelta{Text: "a"},
			sawchat.EventAnswerDelta{Text: "b"},
			sawchat.EventAnswerFinal{},
		)
		loop := agent.New(a, agent.WithPacing(time.Hour))
		session := sawchat.NewSession()

		_, err := loop.Run(ctx, session, "Hi", agent.WithEffectHandler(func(sawchat.Effect) { cancel() }))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, session.History(), 1)
	})
}
