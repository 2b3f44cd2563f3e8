package ctxutil

import (
	"context"
	"strings"
)

type ctxKey string

const (
	actorKey     ctxKey = "actor"
	requestIDKey ctxKey = "request_id"
)

// SystemActor is recorded in audit fields when a write has no authenticated actor.
const SystemActor = "system"

// WithActor stores the name of the acting user in the context.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey, name)
}

// ActorFromCtx extracts the acting user's name from the context.
// Returns "" and false if the value is missing, blank, or of the wrong type.
func ActorFromCtx(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(actorKey).(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// ActorOrSystem returns the acting user's name, or SystemActor when there is none.
func ActorOrSystem(ctx context.Context) string {
	if name, ok := ActorFromCtx(ctx); ok {
		return name
	}
	return SystemActor
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
