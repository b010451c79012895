package relay

import (
	"fmt"
	"strings"
)

// blueprintInstruction is the fixed system prompt for the structured
// blueprint flow. It is not caller-configurable; only the object name and
// mode are interpolated.
func blueprintInstruction(objectName, mode string) string {
	direction := "assemble the object from its parts, starting from nothing and ending with the finished object"
	if mode == "disassembly" {
		direction = "take the object apart, starting from the finished object and ending with its separated parts"
	}
	return fmt.Sprintf(`You are an expert maker and technical writer. Study the attached photograph of "%s" and produce a complete %s blueprint for it.

Respond with a single JSON object and nothing else. No markdown, no code fences, no commentary. The object must contain exactly these seven fields:

1. "title": a short descriptive name for the project.
2. "mode": the literal string "%s".
3. "difficulty": one of "beginner", "intermediate", "advanced".
4. "time": an estimated duration as a human-readable string, e.g. "45 minutes".
5. "materials": an ordered JSON array of material names, most important first.
6. "tools": an ordered JSON array of tool names needed for the work.
7. "summary": two or three sentences describing the overall plan.

Additionally include an eighth field "steps": an ordered JSON array where each element is an object with:
- "id": the 1-based step number as an integer.
- "text": one clear imperative instruction for this step. The steps together must %s.
- "videoPrompt": a one-sentence prompt describing a short video clip that would demonstrate this step.
- "diagramPrompt": a one-sentence prompt describing a simple line diagram illustrating this step.

Keep every string concise. Do not invent parts that are not visible or reasonably implied by the photograph.`,
		objectName, mode, mode, direction)
}

// visionInstruction is the fixed system prompt for bounding-box detection.
const visionInstruction = `You are a precise object detector. Find every distinct physical object in the attached image.

Respond with a single JSON object and nothing else, in the form:
{"objects": [{"name": "<short object name>", "box_2d": [ymin, xmin, ymax, xmax]}]}

Rules:
- box_2d values are integers normalized to a 0-1000 scale of the image dimensions, in the order [ymin, xmin, ymax, xmax].
- Boxes must fit each object tightly.
- Emit one entry per distinct physical object; do not merge groups of objects into one box.
- No extraneous text, no markdown, no code fences.`

// imageDataURL normalizes a caller-supplied image string to a data: URL.
// Callers may send either a full data: URI or a bare base64 payload.
func imageDataURL(image string) string {
	trimmed := strings.TrimSpace(image)
	if strings.HasPrefix(trimmed, "data:") {
		return trimmed
	}
	return "data:image/jpeg;base64," + trimmed
}
