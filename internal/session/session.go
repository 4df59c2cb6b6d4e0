// Package session carries the caller-chosen conversation id through a request.
package session

import (
	"context"
	"strings"
)

// DefaultID is used when the caller supplies no session id.
// Unrelated callers sharing it share one conversation history.
const DefaultID = "default_user"

type ctxKey struct{}

// WithID stores a session id on ctx
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Normalize(id))
}

// FromContext returns the session id stored on ctx, or DefaultID
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return DefaultID
}

// Normalize trims the id and maps blank ids to DefaultID
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID
	}
	return id
}
