package relay

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/app"
)

// Register wires up the relay endpoints under /v1. Preflight OPTIONS is
// answered by the CORS middleware installed at the server level; the explicit
// OPTIONS route below covers plain (non-preflight) probes.
func Register(fiberApp *fiber.App, container *app.Container) {
	handler := &relayHandler{container: container}

	group := fiberApp.Group("/v1")
	group.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	group.Post("/chat", handler.chat)
	group.Post("/blueprint", handler.blueprint)
	group.Post("/vision", handler.vision)
	group.Post("/audio", handler.audio)
	group.Post("/image", handler.image)
	group.Post("/video", handler.video)
}
