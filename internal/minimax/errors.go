package minimax

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the adapter. Handlers map each to a distinct
// HTTP error envelope.
var (
	// ErrMalformedResponse marks a provider reply that was not valid JSON.
	ErrMalformedResponse = errors.New("provider response is not valid JSON")
	// ErrNoCompletion marks a well-formed chat reply with no assistant message.
	ErrNoCompletion = errors.New("provider returned no assistant message")
	// ErrNoTaskID marks a generation submit reply missing the task id.
	ErrNoTaskID = errors.New("provider returned no task id")
	// ErrTaskFailed marks a task the provider reported as failed.
	ErrTaskFailed = errors.New("generation task failed")
	// ErrTaskTimeout marks a task that never reached a terminal state within
	// the polling budget. Deliberately distinct from ErrTaskFailed.
	ErrTaskTimeout = errors.New("generation task timed out")
)

// TransportError reports a non-2xx HTTP status from the provider.
type TransportError struct {
	Endpoint string
	Status   int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d for %s", e.Status, e.Endpoint)
}

// APIError is a provider-declared failure: a non-zero status code inside the
// response envelope. Message is resolved through the endpoint family's code
// table, falling back to the provider's own status text.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Family selects the fixed code table used to interpret provider status
// codes. The tables overlap but are intentionally not unified: the same code
// carries different meanings on different endpoints.
type Family int

const (
	FamilyChat Family = iota
	FamilySpeech
	FamilyGeneration
)

var chatCodes = map[int]string{
	1002: "Rate limit exceeded, please retry later",
	1004: "API key authentication failed",
	1008: "Insufficient account balance",
	1039: "Token limit exceeded",
}

var speechCodes = map[int]string{
	1002: "Rate limit exceeded, please retry later",
	1004: "API key authentication failed",
	1008: "Insufficient account balance",
	1013: "Invalid request parameters",
}

var generationCodes = map[int]string{
	1002: "Rate limit exceeded, please retry later",
	1004: "API key authentication failed",
	1008: "Insufficient account balance",
	1013: "Invalid request parameters",
	1026: "Content flagged by provider moderation",
}

func (f Family) table() map[int]string {
	switch f {
	case FamilySpeech:
		return speechCodes
	case FamilyGeneration:
		return generationCodes
	default:
		return chatCodes
	}
}

// BaseResp is the status envelope the provider attaches to every response.
type BaseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

// Err returns nil when the envelope reports success, otherwise an *APIError
// with the message resolved as: family table, then provider status_msg, then
// a generic fallback.
func (b *BaseResp) Err(family Family) error {
	if b == nil || b.StatusCode == 0 {
		return nil
	}
	msg, ok := family.table()[b.StatusCode]
	if !ok {
		msg = b.StatusMsg
	}
	if msg == "" {
		msg = "Unknown error"
	}
	return &APIError{Code: b.StatusCode, Message: msg}
}
