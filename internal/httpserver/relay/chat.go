package relay

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/minimax"
	"github.com/buildwise/minimax-relay/internal/models"
)

type chatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
	APIKey   string               `json:"apiKey"`
}

func (h *relayHandler) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return missingField(c, "apiKey")
	}
	if len(req.Messages) == 0 {
		return missingField(c, "messages")
	}

	result, err := h.container.Minimax.ChatCompletion(c.UserContext(), req.APIKey, minimax.ChatRequest{
		Model:       minimax.ChatModel,
		Messages:    req.Messages,
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err != nil {
		return writeUpstreamError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": result.Content,
		"usage":   result.Usage,
	})
}
