package requestctx

import "context"

type contextKey struct{}

var key contextKey

// WithRequestID embeds the inbound request id into the context so outbound
// provider calls can reuse it for correlation.
func WithRequestID(parent context.Context, id string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if id == "" {
		return parent
	}
	return context.WithValue(parent, key, id)
}

// RequestID returns the request id, or "" when none was recorded.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key).(string)
	return id
}
