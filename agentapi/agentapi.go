// Package agentapi implements [sawchat.Agent], [sawchat.BatchAgent] and
// [sawchat.ArtifactFetcher] over the agent service's HTTP API.
//
// The streaming endpoint answers with newline-delimited JSON. The stream
// reads it one line at a time, skips blank and malformed lines, and reports
// a connection dropped mid-body separately from a clean end of the body.
package agentapi

import (
	"errors"
	"time"
)

// ErrIdleTimeout reports that the agent service sent nothing for longer than
// the client timeout.
var ErrIdleTimeout = errors.New("no data received from the agent service before the timeout")

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 120 * time.Second
	streamPath     = "/chat-stream"
	batchPath      = "/chat"

	// MaxLineSize bounds a single NDJSON line. Longer lines are skipped like
	// any other malformed line. Final answers can be long.
	MaxLineSize = 4 << 20

	// maxErrorBody bounds how much of a non-2xx body is kept.
	maxErrorBody = 64 << 10
)

// Header names sent with every agent request.
const (
	headerAPIKey    = "X-API-Key"
	headerUserID    = "X-User-Id"
	headerOperadora = "X-Operadora"
)
