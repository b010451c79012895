package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildwise/minimax-relay/internal/models"
)

// relayStub mimics the relay's chat endpoint and records the last request
// body it received.
type relayStub struct {
	status   int
	response string
	lastBody map[string]any
}

func (s *relayStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastBody = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&s.lastBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.response))
	})
}

func newStubClient(t *testing.T, stub *relayStub) *Client {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	c, err := New(Options{RelayURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return c
}

func TestNewRequiresRelayURL(t *testing.T) {
	_, err := New(Options{APIKey: "k"})
	require.ErrorContains(t, err, "relay URL")
}

func TestNewFallsBackToEnvironmentKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	c, err := New(Options{RelayURL: "http://relay.local"})
	require.NoError(t, err)
	require.Equal(t, "env-key", c.apiKey)
}

func TestNewRequiresSomeKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := New(Options{RelayURL: "http://relay.local"})
	require.ErrorContains(t, err, EnvAPIKey)
}

func TestCallUnwrapsEnvelope(t *testing.T) {
	stub := &relayStub{status: http.StatusOK, response: `{"message":"hello","usage":{"tokens":5}}`}
	c := newStubClient(t, stub)

	got, err := c.Call(context.Background(), []models.ChatMessage{
		models.TextMessage(models.RoleUser, "hi"),
	})
	require.NoError(t, err)
	require.Equal(t, "hello", got)

	// The credential travels in the body, never in a header.
	require.Equal(t, "test-key", stub.lastBody["apiKey"])
	messages, ok := stub.lastBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
}

func TestCallSurfacesRelayErrorMessage(t *testing.T) {
	stub := &relayStub{status: http.StatusBadRequest, response: `{"error":"missing_field","message":"apiKey is required"}`}
	c := newStubClient(t, stub)

	_, err := c.Call(context.Background(), nil)
	require.ErrorContains(t, err, "apiKey is required")
}

func TestCallReportsUnreadableBody(t *testing.T) {
	stub := &relayStub{status: http.StatusBadGateway, response: `<html>upstream down</html>`}
	c := newStubClient(t, stub)

	_, err := c.Call(context.Background(), nil)
	require.ErrorContains(t, err, "502")
}

func TestGenerateStructuredJSONRecoversFencedOutput(t *testing.T) {
	reply, _ := json.Marshal(map[string]any{
		"message": "```json\n{\"name\":\"chair\",\"legs\":4}\n```",
	})
	stub := &relayStub{status: http.StatusOK, response: string(reply)}
	c := newStubClient(t, stub)

	var out struct {
		Name string `json:"name"`
		Legs int    `json:"legs"`
	}
	err := c.GenerateStructuredJSON(context.Background(), "describe a chair", &out)
	require.NoError(t, err)
	require.Equal(t, "chair", out.Name)
	require.Equal(t, 4, out.Legs)
}

func TestGenerateStructuredJSONRejectsProse(t *testing.T) {
	stub := &relayStub{status: http.StatusOK, response: `{"message":"I cannot help with that."}`}
	c := newStubClient(t, stub)

	var out map[string]any
	err := c.GenerateStructuredJSON(context.Background(), "prompt", &out)
	require.ErrorContains(t, err, "invalid JSON")
}
