// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing anything HTTP-related.
package requestcontext

import "context"

type correlationIDKey struct{}

// ContextKeyCorrelationID is exported for tests that build contexts directly.
var ContextKeyCorrelationID = correlationIDKey{}

// CorrelationID retrieves the correlation ID from the context. Returns an
// empty string outside the middleware chain.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyCorrelationID).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID injects a correlation ID into a context. Useful for
// service unit tests that don't run the middleware chain.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, id)
}
