// Package trace carries the request trace ID through contexts so outbound calls can forward it.
package trace

import "context"

// Header is the HTTP header carrying the trace ID in both directions.
const Header = "X-Trace-Id"

type ctxKey struct{}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the trace ID stored in ctx, or "".
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
