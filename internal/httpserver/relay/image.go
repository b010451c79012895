package relay

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/minimax"
)

type imageRequest struct {
	Prompt string `json:"prompt"`
	APIKey string `json:"apiKey"`
}

func (h *relayHandler) image(c *fiber.Ctx) error {
	var req imageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return missingField(c, "apiKey")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return missingField(c, "prompt")
	}

	replayKey := strings.TrimSpace(c.Get("Idempotency-Key"))
	if data, ok := h.container.Replay.Get(c.UserContext(), replayKey); ok {
		c.Set("Content-Type", "application/json")
		return c.Send(data)
	}

	job := h.container.Config.Jobs.Image
	result, err := h.container.Minimax.GenerateImage(c.UserContext(), req.APIKey, req.Prompt, minimax.PollPolicy{
		Interval:    job.PollInterval,
		MaxAttempts: job.MaxAttempts,
	})
	if err != nil {
		return writeUpstreamError(c, err)
	}

	return h.sendGenerationResult(c, replayKey, fiber.Map{
		"imageUrl": result.URL,
		"fileId":   result.FileID,
		"taskId":   result.TaskID,
	})
}

// sendGenerationResult serializes a finished generation envelope, recording
// it in the replay cache when the caller supplied an idempotency key.
func (h *relayHandler) sendGenerationResult(c *fiber.Ctx, replayKey string, body fiber.Map) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return writeUpstreamError(c, err)
	}
	if replayKey != "" {
		h.container.Replay.Store(c.UserContext(), replayKey, payload)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(payload)
}
