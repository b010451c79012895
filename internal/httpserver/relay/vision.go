package relay

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/httpserver/httputil"
	"github.com/buildwise/minimax-relay/internal/minimax"
	"github.com/buildwise/minimax-relay/internal/models"
	"github.com/buildwise/minimax-relay/internal/textproc"
)

type visionRequest struct {
	ImageBase64 string `json:"imageBase64"`
	APIKey      string `json:"apiKey"`
}

type detectionPayload struct {
	Objects []models.DetectedObject `json:"objects"`
}

func (h *relayHandler) vision(c *fiber.Ctx) error {
	var req visionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return missingField(c, "apiKey")
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return missingField(c, "imageBase64")
	}

	messages := []models.ChatMessage{
		models.TextMessage(models.RoleSystem, visionInstruction),
		models.MultimodalMessage(models.RoleUser,
			models.ImagePart(imageDataURL(req.ImageBase64)),
			models.TextPart("Detect all objects in this image."),
		),
	}

	// Lower temperature than chat/blueprint to keep box output stable.
	result, err := h.container.Minimax.ChatCompletion(c.UserContext(), req.APIKey, minimax.ChatRequest{
		Model:       minimax.VisionModel,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   2048,
		JSONMode:    true,
	})
	if err != nil {
		return writeUpstreamError(c, err)
	}

	var payload detectionPayload
	if err := textproc.DecodeLoose(result.Content, &payload); err != nil {
		return httputil.WriteErrorDetails(c, fiber.StatusInternalServerError,
			"invalid_detection", "model output is not a valid detection result", truncate(result.Content, 500))
	}
	// A well-formed reply without an objects key means nothing was detected.
	if payload.Objects == nil {
		payload.Objects = []models.DetectedObject{}
	}

	return c.JSON(fiber.Map{
		"objects": payload.Objects,
		"usage":   result.Usage,
	})
}
