package shared

import "context"

type traceIDContextKey struct{}

// ContextWithTraceID attaches the request trace ID to ctx
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}

// TraceIDFromContext returns "" when ctx carries no trace ID
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDContextKey{}).(string)
	return traceID
}
