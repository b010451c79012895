// Package client is the caller-side helper for the relay's chat endpoint.
// Application code uses it to run conversations and to coerce free-form
// model output into structured JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/buildwise/minimax-relay/internal/models"
	"github.com/buildwise/minimax-relay/internal/textproc"
)

// EnvAPIKey names the environment variable holding the default credential.
// Only this helper reads it; the relay endpoints never touch the
// environment.
const EnvAPIKey = "MINIMAX_API_KEY"

// Options configure the dispatch client.
type Options struct {
	RelayURL   string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts conversations to the relay and unwraps its envelope.
type Client struct {
	relayURL string
	apiKey   string
	http     *http.Client
}

// New constructs a dispatch client. The credential falls back to the
// MINIMAX_API_KEY environment variable when not supplied.
func New(opts Options) (*Client, error) {
	relayURL := strings.TrimRight(strings.TrimSpace(opts.RelayURL), "/")
	if relayURL == "" {
		return nil, errors.New("client: relay URL required")
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if apiKey == "" {
		return nil, errors.New("client: api key required (set " + EnvAPIKey + ")")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{relayURL: relayURL, apiKey: apiKey, http: httpClient}, nil
}

// chatEnvelope covers both relay reply shapes: on success Message holds the
// assistant text, on failure Error is set and Message carries the reason.
type chatEnvelope struct {
	Message string          `json:"message"`
	Usage   json.RawMessage `json:"usage"`
	Error   string          `json:"error"`
}

// Call posts messages to the relay's chat endpoint and returns the
// assistant's text, surfacing the relay's own error message on failure.
func (c *Client) Call(ctx context.Context, messages []models.ChatMessage) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"messages": messages,
		"apiKey":   c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("client: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+"/v1/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("client: call relay: %w", err)
	}
	defer resp.Body.Close()

	var envelope chatEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("client: relay returned HTTP %d with an unreadable body", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || envelope.Error != "" {
		msg := envelope.Message
		if msg == "" {
			msg = fmt.Sprintf("relay returned HTTP %d", resp.StatusCode)
		}
		return "", fmt.Errorf("client: %s", msg)
	}
	return envelope.Message, nil
}

// GenerateStructuredJSON runs a single-shot prompt that demands strict JSON
// output and decodes the reply into out. Models occasionally ignore the
// no-markdown instruction, so the reply goes through the lossy recovery in
// textproc before failing.
func (c *Client) GenerateStructuredJSON(ctx context.Context, prompt string, out any) error {
	messages := []models.ChatMessage{
		models.TextMessage(models.RoleSystem,
			"You are a strict JSON generator. Respond with a single JSON value and nothing else. "+
				"Do not wrap the output in markdown code fences and do not add commentary."),
		models.TextMessage(models.RoleUser, prompt),
	}

	raw, err := c.Call(ctx, messages)
	if err != nil {
		return err
	}
	if err := textproc.DecodeLoose(raw, out); err != nil {
		return fmt.Errorf("client: invalid JSON in model output: %w", err)
	}
	return nil
}
