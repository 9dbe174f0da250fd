package agentapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/sawchat"
	sawjson "github.com/fwojciec/sawchat/json"
)

// Interface compliance checks.
var (
	_ sawchat.Agent           = (*Client)(nil)
	_ sawchat.BatchAgent      = (*Client)(nil)
	_ sawchat.ArtifactFetcher = (*Client)(nil)
)

// Client talks to the agent service.
type Client struct {
	apiKey     string
	userID     string
	operadora  string
	baseURL    string
	streamURL  string
	batchURL   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Endpoint URLs derive from it unless set
// explicitly.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithStreamURL overrides the full URL of the streaming endpoint.
func WithStreamURL(u string) Option {
	return func(c *Client) { c.streamURL = u }
}

// WithBatchURL overrides the full URL of the batch endpoint.
func WithBatchURL(u string) Option {
	return func(c *Client) { c.batchURL = u }
}

// WithHTTPClient sets a custom HTTP client. Its own Timeout, if any, also
// applies and cuts streams off after that total duration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds batch requests and downloads as a whole. A stream is
// instead aborted when no data arrives for d, so a long answer that keeps
// flowing is never cut off. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserID sets the X-User-Id header.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// WithOperadora sets the X-Operadora tenant header on batch requests.
func WithOperadora(op string) Option {
	return func(c *Client) { c.operadora = op }
}

// WithLogger sets the logger used to report skipped stream lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StreamURL returns the URL of the streaming endpoint.
func (c *Client) StreamURL() string {
	if c.streamURL != "" {
		return c.streamURL
	}
	return c.baseURL + streamPath
}

// BatchURL returns the URL of the batch endpoint.
func (c *Client) BatchURL() string {
	if c.batchURL != "" {
		return c.batchURL
	}
	return c.baseURL + batchPath
}

// Stream posts the request to the streaming endpoint and returns a
// [sawchat.Stream] over the NDJSON body. A non-2xx status returns a
// *sawchat.APIError before any line is read.
func (c *Client) Stream(ctx context.Context, req sawchat.Request) (sawchat.Stream, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	var idle *time.Timer
	if c.timeout > 0 {
		idle = time.AfterFunc(c.timeout, func() { cancel(ErrIdleTimeout) })
	}

	resp, err := c.post(ctx, c.StreamURL(), req, false)
	if err != nil {
		if idle != nil {
			idle.Stop()
		}
		if cause := context.Cause(ctx); errors.Is(cause, ErrIdleTimeout) {
			err = fmt.Errorf("agentapi: %w", cause)
		}
		cancel(nil)
		return nil, err
	}
	c.logger.Debug("agent stream opened", "url", c.StreamURL(), "status", resp.StatusCode)
	body := &idleBody{ReadCloser: resp.Body, timer: idle, timeout: c.timeout, cancel: cancel}
	return newStream(ctx, body, c.logger), nil
}

// Ask posts the request to the batch endpoint and decodes the single reply.
func (c *Client) Ask(ctx context.Context, req sawchat.Request) (sawchat.BatchResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, c.BatchURL(), req, true)
	if err != nil {
		return sawchat.BatchResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return sawchat.BatchResponse{}, fmt.Errorf("agentapi: read batch response: %w", err)
	}
	out, err := sawjson.UnmarshalBatchResponse(data)
	if err != nil {
		return sawchat.BatchResponse{}, fmt.Errorf("agentapi: %w", err)
	}
	return out, nil
}

// Fetch downloads an artifact with a plain GET. Relative URLs resolve
// against the base URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) (sawchat.Artifact, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	target, err := c.resolve(rawURL)
	if err != nil {
		return sawchat.Artifact{}, fmt.Errorf("agentapi: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return sawchat.Artifact{}, fmt.Errorf("agentapi: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return sawchat.Artifact{}, fmt.Errorf("agentapi: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return sawchat.Artifact{}, fmt.Errorf("agentapi: download: %w", parseHTTPError(resp))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return sawchat.Artifact{}, fmt.Errorf("agentapi: read download: %w", err)
	}
	return sawchat.Artifact{
		Filename: sawchat.FilenameFromURL(target),
		MimeType: sawchat.MimeCSV,
		Data:     data,
	}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, req sawchat.Request, withTenant bool) (*http.Response, error) {
	body, err := sawjson.MarshalRequest(req)
	if err != nil {
		return nil, fmt.Errorf("agentapi: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agentapi: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerAPIKey, c.apiKey)
	httpReq.Header.Set(headerUserID, c.userID)
	if withTenant && c.operadora != "" {
		httpReq.Header.Set(headerOperadora, c.operadora)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("agentapi: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, fmt.Errorf("agentapi: %w", parseHTTPError(resp))
	}
	return resp, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return rawURL, nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// parseHTTPError keeps the response body verbatim; the service's error
// format is not part of its contract.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &sawchat.APIError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("(failed to read body: %v)", err)}
	}
	return &sawchat.APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

// idleBody cancels the request when a read has waited longer than timeout
// for data.
type idleBody struct {
	io.ReadCloser
	timer   *time.Timer
	timeout time.Duration
	cancel  context.CancelCauseFunc
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 && b.timer != nil {
		b.timer.Reset(b.timeout)
	}
	return n, err
}

func (b *idleBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}
	err := b.ReadCloser.Close()
	b.cancel(nil)
	return err
}
