package relay

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/minimax"
)

type videoRequest struct {
	Prompt          string `json:"prompt"`
	FirstFrameImage string `json:"firstFrameImage"`
	APIKey          string `json:"apiKey"`
}

func (h *relayHandler) video(c *fiber.Ctx) error {
	var req videoRequest
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

	job := h.container.Config.Jobs.Video
	result, err := h.container.Minimax.GenerateVideo(c.UserContext(), req.APIKey, minimax.VideoRequest{
		Prompt:          req.Prompt,
		FirstFrameImage: req.FirstFrameImage,
	}, minimax.PollPolicy{
		Interval:    job.PollInterval,
		MaxAttempts: job.MaxAttempts,
	})
	if err != nil {
		return writeUpstreamError(c, err)
	}

	return h.sendGenerationResult(c, replayKey, fiber.Map{
		"videoUrl": result.URL,
		"fileId":   result.FileID,
		"taskId":   result.TaskID,
	})
}
