package agentapi

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/sawchat"
	sawjson "github.com/fwojciec/sawchat/json"
)

// stream implements [sawchat.Stream] by decoding NDJSON lines from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	reader  *bufio.Reader
	line    []byte
	ctx     context.Context
	logger  *slog.Logger
	state   sawchat.StreamState
	err     error // terminal error, if any
	skipped int
}

// Interface compliance check.
var _ sawchat.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger *slog.Logger) *stream {
	return &stream{
		body:    body,
		reader:  bufio.NewReaderSize(body, 64<<10),
		ctx:     ctx,
		logger:  logger,
		state:   sawchat.StreamStateNew,
	}
}

// Next reads lines until one decodes to an event.
// Returns io.EOF when the body ends cleanly.
func (s *stream) Next() (sawchat.Event, error) {
	switch s.state {
	case sawchat.StreamStateComplete:
		return nil, io.EOF
	case sawchat.StreamStateError:
		return nil, s.err
	case sawchat.StreamStateClosed:
		return nil, fmt.Errorf("agentapi: %w", sawchat.ErrStreamClosed)
	}

	for {
		line, tooLong, err := s.readLine()
		if err == io.EOF {
			s.state = sawchat.StreamStateComplete
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		s.state = sawchat.StreamStateStreaming

		if tooLong {
			s.skipped++
			s.logger.Warn("skipping oversized stream line", "limit", MaxLineSize, "error", sawchat.ErrMalformedEvent)
			continue
		}
		evt, err := sawjson.DecodeEvent(line)
		if err != nil {
			s.skipped++
			s.logger.Warn("skipping invalid stream line", "line", string(line), "error", err)
			continue
		}
		if evt == nil {
			// Blank keep-alive line.
			continue
		}
		return evt, nil
	}
}

// readLine returns the next line without its LF or CRLF terminator. A line
// longer than MaxLineSize is consumed up to its terminator and reported as
// tooLong with no content. A final line without a terminator is returned
// before io.EOF.
func (s *stream) readLine() (line []byte, tooLong bool, err error) {
	s.line = s.line[:0]
	read := false
	for {
		chunk, err := s.reader.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			s.line = append(s.line, chunk...)
			// Two extra bytes leave room for the CRLF terminator.
			if len(s.line) > MaxLineSize+2 {
				tooLong = true
				s.line = s.line[:0]
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == io.EOF && read {
			break
		}
		if err != nil {
			return nil, false, err
		}
		break
	}
	if tooLong {
		return nil, true, nil
	}
	line = bytes.TrimSuffix(s.line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) > MaxLineSize {
		return nil, true, nil
	}
	return line, false, nil
}

// State returns the current stream state.
func (s *stream) State() sawchat.StreamState {
	return s.state
}

// Close releases the HTTP response body. Closing before the end of the
// stream abandons the rest of the response.
func (s *stream) Close() error {
	if s.state != sawchat.StreamStateComplete && s.state != sawchat.StreamStateError {
		s.state = sawchat.StreamStateClosed
	}
	if s.skipped > 0 {
		s.logger.Warn("stream contained invalid lines", "count", s.skipped)
	}
	return s.body.Close()
}

// terminate records a read failure. A cancelled context is reported as
// such; an idle timeout or anything else means the connection broke
// mid-body.
func (s *stream) terminate(err error) {
	s.state = sawchat.StreamStateError
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		if cause := context.Cause(s.ctx); errors.Is(cause, ErrIdleTimeout) {
			s.err = fmt.Errorf("agentapi: %w: %w", sawchat.ErrStreamInterrupted, cause)
			return
		}
		s.err = fmt.Errorf("agentapi: %w", ctxErr)
		return
	}
	s.err = fmt.Errorf("agentapi: %w: %w", sawchat.ErrStreamInterrupted, err)
}
