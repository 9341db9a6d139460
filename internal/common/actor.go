package common

import (
	"context"
	"net/http"
	"strings"
)

// Header names carrying the caller identity. Authentication happens upstream;
// these are trusted as-is.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

type ctxKey string

const actorKey ctxKey = "actor"

// Actor identifies the caller of an admin endpoint.
type Actor struct {
	ID   string
	Role string
}

// WithActor stores the actor on the provided context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom extracts the actor from the context if present.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok && a.Role != ""
}

// ActorMiddleware reads the actor headers into the request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole)))
		if role != "" {
			a := Actor{ID: strings.TrimSpace(r.Header.Get(HeaderActorID)), Role: role}
			r = r.WithContext(WithActor(r.Context(), a))
		}
		next.ServeHTTP(w, r)
	})
}
