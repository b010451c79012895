package minimax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buildwise/minimax-relay/internal/requestctx"
)

// DefaultBaseURL is the provider's public API host.
const DefaultBaseURL = "https://api.minimax.chat"

// Fixed model identifiers used by the relay endpoints.
const (
	ChatModel   = "MiniMax-Text-01"
	VisionModel = "MiniMax-VL-01"
	ImageModel  = "image-01"
	VideoModel  = "video-01"
)

// Observer receives upstream call telemetry. Implementations must be safe
// for concurrent use.
type Observer interface {
	RecordUpstreamRequest(endpoint string, status int, duration time.Duration)
	RecordPollAttempt(kind string)
}

// Options configure the MiniMax client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
}

// Client issues requests against the MiniMax REST API. It holds no
// credential: every call takes the caller-supplied API key.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
}

// New constructs a MiniMax client.
func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, http: httpClient, observer: opts.Observer}
}

// BaseURL exposes the configured provider host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FileURL builds the retrieval URL for a generated file. No fetch is
// performed here; callers dereference the URL with their own credential.
func (c *Client) FileURL(fileID string) string {
	return c.baseURL + "/v1/files/retrieve?file_id=" + url.QueryEscape(fileID)
}

// postJSON sends payload to path and decodes the response body into out.
// A non-2xx reply is reported as a TransportError before any decode is
// attempted; an undecodable 2xx body is reported as ErrMalformedResponse.
func (c *Client) postJSON(ctx context.Context, path, apiKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("X-Request-Id", requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(path, 0, start)
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.record(path, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Endpoint: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, path)
	}
	return nil
}

// getJSON fetches path with query parameters and decodes into out, with the
// same error contract as postJSON.
func (c *Client) getJSON(ctx context.Context, path, apiKey string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("X-Request-Id", requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(path, 0, start)
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.record(path, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Endpoint: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, path)
	}
	return nil
}

// requestID reuses the inbound request id for upstream correlation, minting
// a fresh one for calls that did not pass through the HTTP layer.
func requestID(ctx context.Context) string {
	if id := requestctx.RequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// Probe reports whether the provider host is reachable. Any HTTP response
// counts as reachable; only connection-level failures are errors.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", c.baseURL, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

func (c *Client) record(endpoint string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.RecordUpstreamRequest(endpoint, status, time.Since(start))
}
