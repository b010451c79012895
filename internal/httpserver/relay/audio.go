package relay

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/minimax"
)

type audioRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voiceId"`
	Model   string  `json:"model"`
	Speed   float64 `json:"speed"`
	Emotion string  `json:"emotion"`
	APIKey  string  `json:"apiKey"`
}

func (h *relayHandler) audio(c *fiber.Ctx) error {
	var req audioRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return missingField(c, "apiKey")
	}
	if strings.TrimSpace(req.Text) == "" {
		return missingField(c, "text")
	}

	result, err := h.container.Minimax.TextToSpeech(c.UserContext(), req.APIKey, minimax.SpeechRequest{
		Model:   req.Model,
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Speed:   req.Speed,
		Emotion: req.Emotion,
	})
	if err != nil {
		return writeUpstreamError(c, err)
	}

	return c.JSON(fiber.Map{
		"audioData": result.Audio,
		"audioUrl":  "data:audio/mp3;base64," + result.Audio,
		"usage":     result.Usage,
	})
}
