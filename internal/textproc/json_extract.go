// Package textproc recovers structured JSON from free-form model output.
// Models sometimes wrap JSON in markdown fences or surround it with prose
// despite instructions not to; the helpers here are a deliberately lossy
// best-effort recovery, not a general parser.
package textproc

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON value can be recovered.
var ErrNoJSON = errors.New("no JSON value found in model output")

// StripCodeFences removes a leading/trailing triple-backtick fence, including
// an optional language tag on the opening fence.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if idx := strings.IndexAny(trimmed, "\r\n"); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first != "" && !strings.ContainsAny(first, "{}[]") {
			trimmed = trimmed[idx:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ExtractJSONValue returns the outermost brace- or bracket-delimited span in
// s. The boolean reports whether such a span exists.
func ExtractJSONValue(s string) (string, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", false
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start, end := -1, -1
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start = objStart
		end = strings.LastIndex(raw, "}")
	case arrStart >= 0:
		start = arrStart
		end = strings.LastIndex(raw, "]")
	}
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// DecodeLoose unmarshals model output into out: fences are stripped first,
// then a direct parse is attempted, then the outermost JSON span is parsed as
// a fallback.
func DecodeLoose(s string, out any) error {
	raw := StripCodeFences(s)
	if raw == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(raw), out); err == nil {
		return nil
	}
	span, ok := ExtractJSONValue(raw)
	if !ok {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		return ErrNoJSON
	}
	return nil
}
