package relay

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/buildwise/minimax-relay/internal/app"
	"github.com/buildwise/minimax-relay/internal/httpserver/httputil"
	"github.com/buildwise/minimax-relay/internal/minimax"
)

type relayHandler struct {
	container *app.Container
}

// missingField rejects a request before any outbound call is made.
func missingField(c *fiber.Ctx, field string) error {
	return httputil.WriteError(c, fiber.StatusBadRequest, "missing_field", field+" is required")
}

func invalidBody(c *fiber.Ctx) error {
	return httputil.WriteError(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
}

// writeUpstreamError maps adapter errors onto the relay's error taxonomy.
// Every branch yields a structured JSON envelope; nothing propagates as an
// unhandled error.
func writeUpstreamError(c *fiber.Ctx, err error) error {
	var apiErr *minimax.APIError
	if errors.As(err, &apiErr) {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "provider_error", apiErr.Message)
	}
	var transport *minimax.TransportError
	if errors.As(err, &transport) {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "upstream_error", transport.Error())
	}
	switch {
	case errors.Is(err, minimax.ErrMalformedResponse):
		return httputil.WriteError(c, fiber.StatusInternalServerError, "invalid_response", "provider response could not be parsed")
	case errors.Is(err, minimax.ErrNoCompletion):
		return httputil.WriteError(c, fiber.StatusInternalServerError, "empty_completion", "provider returned no assistant message")
	case errors.Is(err, minimax.ErrNoTaskID):
		return httputil.WriteError(c, fiber.StatusInternalServerError, "missing_task_id", "provider did not return a task id")
	case errors.Is(err, minimax.ErrTaskFailed):
		return httputil.WriteError(c, fiber.StatusInternalServerError, "generation_failed", "generation task failed")
	case errors.Is(err, minimax.ErrTaskTimeout):
		return httputil.WriteError(c, fiber.StatusInternalServerError, "generation_timeout", "generation task did not finish in time")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return httputil.WriteError(c, fiber.StatusInternalServerError, "request_cancelled", "request was cancelled before the provider finished")
	}
	return httputil.WriteError(c, fiber.StatusInternalServerError, "internal_error", err.Error())
}

// truncate bounds diagnostic details so raw model output cannot bloat an
// error envelope.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
