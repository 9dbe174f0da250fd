// Package mock provides test doubles for sawchat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/sawchat"
)

// Interface compliance checks.
var (
	_ sawchat.Agent           = (*Agent)(nil)
	_ sawchat.BatchAgent      = (*BatchAgent)(nil)
	_ sawchat.ArtifactFetcher = (*Fetcher)(nil)
)

// Agent is a test double for sawchat.Agent.
// Set StreamFn before calling Stream.
type Agent struct {
	StreamFn func(ctx context.Context, req sawchat.Request) (sawchat.Stream, error)
}

// Stream delegates to StreamFn.
func (a *Agent) Stream(ctx context.Context, req sawchat.Request) (sawchat.Stream, error) {
	return a.StreamFn(ctx, req)
}

// BatchAgent is a test double for sawchat.BatchAgent.
type BatchAgent struct {
	AskFn func(ctx context.Context, req sawchat.Request) (sawchat.BatchResponse, error)
}

// Ask delegates to AskFn.
func (b *BatchAgent) Ask(ctx context.Context, req sawchat.Request) (sawchat.BatchResponse, error) {
	return b.AskFn(ctx, req)
}

// Fetcher is a test double for sawchat.ArtifactFetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (sawchat.Artifact, error)
}

// Fetch delegates to FetchFn.
func (f *Fetcher) Fetch(ctx context.Context, url string) (sawchat.Artifact, error) {
	return f.FetchFn(ctx, url)
}
