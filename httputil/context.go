package httputil

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ContextKeyRequestID contextKey = "request_id"

const HeaderRequestID = "X-Request-ID"

// WithRequestID stores the request id sent along with outgoing calls
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestID returns the request id stored in ctx, or a fresh one when none was set
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		return requestID
	}

	return uuid.NewString()
}
