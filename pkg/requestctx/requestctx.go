package requestctx

import "context"

type ctxKey string

const (
	correlationIDKey ctxKey = "correlation_id"
	principalKey     ctxKey = "principal"
)

// WithCorrelationID returns a new context with the provided correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID fetches the correlation ID from the context, if any.
func CorrelationID(ctx context.Context) string {
	v := ctx.Value(correlationIDKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// WithPrincipal records who was authenticated for this request
// (proxy username, or "api-key").
func WithPrincipal(ctx context.Context, who string) context.Context {
	return context.WithValue(ctx, principalKey, who)
}

func Principal(ctx context.Context) string {
	if s, ok := ctx.Value(principalKey).(string); ok {
		return s
	}
	return ""
}
