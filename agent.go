package sawchat

import "context"

// Agent is the remote agent service reached through its streaming endpoint.
type Agent interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// BatchAgent is the remote agent service reached through its batch endpoint.
// The whole reply arrives as one document.
type BatchAgent interface {
	Ask(ctx context.Context, req Request) (BatchResponse, error)
}

// ArtifactFetcher downloads files referenced by a final answer.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, url string) (Artifact, error)
}

// BatchResponse is the batch endpoint's reply. Steps are replayed for
// display only.
type BatchResponse struct {
	Answer string
	SQL    string
	Steps  []StepInfo
}
