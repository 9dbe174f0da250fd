// Package gobreaker guards agent requests with a circuit breaker so that a
// failing agent service is not hammered with new turns.
package gobreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/sawchat"
	gb "github.com/sony/gobreaker/v2"
)

// Default breaker settings.
const (
	defaultMaxFailures uint32 = 5
	defaultTimeout            = 30 * time.Second
	defaultInterval           = 60 * time.Second
)

// Config configures the breaker.
type Config struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration `yaml:"timeout"`
	// Interval clears failure counts while closed. Zero uses the default.
	Interval time.Duration `yaml:"interval"`
}

// Client is what the breaker wraps.
type Client interface {
	sawchat.Agent
	sawchat.BatchAgent
}

// Interface compliance checks.
var (
	_ sawchat.Agent      = (*Agent)(nil)
	_ sawchat.BatchAgent = (*Agent)(nil)
)

// Agent wraps a Client with a circuit breaker. Only request initiation is
// guarded: once a stream is open its read errors do not count.
type Agent struct {
	inner   Client
	breaker *gb.CircuitBreaker[struct{}]
}

// New wraps inner. Zero Config fields take defaults.
func New(inner Client, cfg Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}

	breaker := gb.NewCircuitBreaker[struct{}](gb.Settings{
		Name:        "agent",
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gb.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gb.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: isSuccessful,
	})
	return &Agent{inner: inner, breaker: breaker}
}

// Stream opens a stream through the breaker.
func (a *Agent) Stream(ctx context.Context, req sawchat.Request) (sawchat.Stream, error) {
	var stream sawchat.Stream
	_, err := a.breaker.Execute(func() (struct{}, error) {
		var err error
		stream, err = a.inner.Stream(ctx, req)
		return struct{}{}, err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return stream, nil
}

// Ask sends a batch request through the breaker.
func (a *Agent) Ask(ctx context.Context, req sawchat.Request) (sawchat.BatchResponse, error) {
	var resp sawchat.BatchResponse
	_, err := a.breaker.Execute(func() (struct{}, error) {
		var err error
		resp, err = a.inner.Ask(ctx, req)
		return struct{}{}, err
	})
	if err != nil {
		return sawchat.BatchResponse{}, wrap(err)
	}
	return resp, nil
}

// State returns the current breaker state.
func (a *Agent) State() gb.State {
	return a.breaker.State()
}

// isSuccessful decides what counts against the service. Client errors and
// cancellations say nothing about its health.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *sawchat.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

func wrap(err error) error {
	if errors.Is(err, gb.ErrOpenState) || errors.Is(err, gb.ErrTooManyRequests) {
		return fmt.Errorf("gobreaker: agent unavailable: %w", err)
	}
	return err
}
