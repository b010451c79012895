package httputil

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// WriteError standardizes the JSON error envelope returned by every relay
// endpoint: a short machine-readable code plus a human message.
func WriteError(c *fiber.Ctx, status int, code, msg string) error {
	return WriteErrorDetails(c, status, code, msg, "")
}

// WriteErrorDetails adds an optional diagnostic details field, used when a
// raw upstream fragment helps the caller debug a failure.
func WriteErrorDetails(c *fiber.Ctx, status int, code, msg, details string) error {
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "unknown error"
		}
	}
	body := fiber.Map{
		"error":   code,
		"message": msg,
	}
	if details != "" {
		body["details"] = details
	}
	return c.Status(status).JSON(body)
}
