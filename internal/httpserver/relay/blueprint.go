package relay

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/httpserver/httputil"
	"github.com/buildwise/minimax-relay/internal/minimax"
	"github.com/buildwise/minimax-relay/internal/models"
	"github.com/buildwise/minimax-relay/internal/textproc"
)

type blueprintRequest struct {
	ImageBase64 string `json:"imageBase64"`
	ObjectName  string `json:"objectName"`
	Mode        string `json:"mode"`
	APIKey      string `json:"apiKey"`
}

func (h *relayHandler) blueprint(c *fiber.Ctx) error {
	var req blueprintRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return missingField(c, "apiKey")
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return missingField(c, "imageBase64")
	}
	if strings.TrimSpace(req.ObjectName) == "" {
		return missingField(c, "objectName")
	}
	mode := strings.TrimSpace(req.Mode)
	if mode != models.ModeAssembly && mode != models.ModeDisassembly {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid_mode", "mode must be assembly or disassembly")
	}

	messages := []models.ChatMessage{
		models.TextMessage(models.RoleSystem, blueprintInstruction(req.ObjectName, mode)),
		models.MultimodalMessage(models.RoleUser,
			models.ImagePart(imageDataURL(req.ImageBase64)),
			models.TextPart("Generate the "+mode+" blueprint for this "+req.ObjectName+"."),
		),
	}

	result, err := h.container.Minimax.ChatCompletion(c.UserContext(), req.APIKey, minimax.ChatRequest{
		Model:       minimax.VisionModel,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   4096,
		JSONMode:    true,
	})
	if err != nil {
		return writeUpstreamError(c, err)
	}

	var blueprint models.Blueprint
	if err := textproc.DecodeLoose(result.Content, &blueprint); err != nil {
		return httputil.WriteErrorDetails(c, fiber.StatusInternalServerError,
			"invalid_blueprint", "model output is not a valid blueprint", truncate(result.Content, 500))
	}

	return c.JSON(fiber.Map{
		"blueprint": blueprint,
		"usage":     result.Usage,
	})
}
