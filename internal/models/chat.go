package models

import "encoding/json"

// ChatMessage is a single conversation turn. Content is relayed to the
// provider verbatim: callers may send a plain string or an array of
// multimodal content parts, and the relay does not inspect either form.
type ChatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Name    string          `json:"name,omitempty"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContentPart is one element of a multimodal message body.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image reference, typically a data: URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextMessage builds a message whose content is a plain string.
func TextMessage(role, text string) ChatMessage {
	content, _ := json.Marshal(text)
	return ChatMessage{Role: role, Content: content}
}

// MultimodalMessage builds a message whose content is a list of parts.
func MultimodalMessage(role string, parts ...ContentPart) ChatMessage {
	content, _ := json.Marshal(parts)
	return ChatMessage{Role: role, Content: content}
}

// TextPart wraps plain text as a content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart wraps an image URL (or data: URI) as a content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}
