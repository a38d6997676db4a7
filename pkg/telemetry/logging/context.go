package logging

import (
	"context"
	"log/slog"
)

// Context keys for request-scoped log fields.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	providerKey  contextKey = "provider"
)

// WithRequestID returns a context carrying a request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithProvider returns a context carrying the provider being called.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey, provider)
}

// Provider retrieves the provider name from the context.
func Provider(ctx context.Context) string {
	p, _ := ctx.Value(providerKey).(string)
	return p
}

// ContextHandler lifts request-scoped context fields onto every record
// passing through the wrapped handler, so call sites log through the
// context-aware slog methods without repeating correlation fields.
type ContextHandler struct {
	slog.Handler
}

// Handle adds the context fields present on ctx to the record.
func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if p := Provider(ctx); p != "" {
		r.AddAttrs(slog.String("provider", p))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs preserves the wrapper around the derived handler.
func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{h.Handler.WithAttrs(attrs)}
}

// WithGroup preserves the wrapper around the derived handler.
func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{h.Handler.WithGroup(name)}
}
