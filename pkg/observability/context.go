package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	requestIDCtxKey     contextKey = "request_id"
	actorIDCtxKey       contextKey = "actor_id"
)

// Attribute keys used in log records.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	ActorIDKey       = "actor_id"
)

// WithCorrelationID stores id, generating one when empty.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtxKey)
}

// WithRequestID stores id, generating one when empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDCtxKey)
}

// WithActorID records who is acting so log lines can be attributed.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDCtxKey, id)
}

func ActorIDFromContext(ctx context.Context) string {
	return stringValue(ctx, actorIDCtxKey)
}

// NewRequestContext starts a request scope, reusing correlationID when the
// caller forwarded one.
func NewRequestContext(ctx context.Context, correlationID string) context.Context {
	return WithCorrelationID(WithRequestID(ctx, ""), correlationID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
