package minimax

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/buildwise/minimax-relay/internal/models"
)

const chatCompletionPath = "/v1/text/chatcompletion_v2"

// ChatRequest describes a single chat-completion call.
type ChatRequest struct {
	Model       string
	Messages    []models.ChatMessage
	Temperature float32
	MaxTokens   int
	// JSONMode forces the provider's JSON response format.
	JSONMode bool
}

// ChatResult is the normalized outcome of a chat completion. Usage is the
// provider's usage block, passed through untouched.
type ChatResult struct {
	Content string
	Usage   json.RawMessage
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string               `json:"model"`
	Messages       []models.ChatMessage `json:"messages"`
	Temperature    float32              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage    json.RawMessage `json:"usage"`
	BaseResp *BaseResp       `json:"base_resp"`
}

// ChatCompletion performs one chat-completion round trip and returns the
// first choice's assistant text.
func (c *Client) ChatCompletion(ctx context.Context, apiKey string, req ChatRequest) (ChatResult, error) {
	payload := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if payload.Model == "" {
		payload.Model = ChatModel
	}
	if req.JSONMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatCompletionResponse
	if err := c.postJSON(ctx, chatCompletionPath, apiKey, payload, &resp); err != nil {
		return ChatResult{}, err
	}
	if err := resp.BaseResp.Err(FamilyChat); err != nil {
		return ChatResult{}, err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return ChatResult{}, ErrNoCompletion
	}
	return ChatResult{Content: resp.Choices[0].Message.Content, Usage: resp.Usage}, nil
}
