package obs

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type routePatternKey struct{}

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the pattern stored by WithRoutePattern.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}

// Route resolves the route label for r: an explicit pattern on the context,
// then chi's matched pattern, then fallback. Call it after the router ran so
// chi has filled in the pattern.
func Route(r *http.Request, fallback string) string {
	if r == nil {
		return fallback
	}
	if route := RoutePatternFromContext(r.Context()); route != "" {
		return route
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if route := strings.TrimSpace(rc.RoutePattern()); route != "" && route != "/*" {
			return route
		}
	}
	return fallback
}
