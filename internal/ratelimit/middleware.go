package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/ishtar-commerce/internal/common"
	"github.com/noah-isme/ishtar-commerce/internal/obs"
)

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// ClientIPKey keys limits by the caller's address.
func ClientIPKey(r *http.Request) string {
	return "ip:" + common.ClientIP(r)
}

// ActorOrIPKey keys limits by actor id when the caller identified itself,
// falling back to the client address.
func ActorOrIPKey(r *http.Request) string {
	if actor, ok := common.ActorFrom(r.Context()); ok && actor.ID != "" {
		return "actor:" + actor.Role + ":" + actor.ID
	}
	return ClientIPKey(r)
}

// Handler enforces rate limits before delegating to the next handler. A
// limiter error lets the request through and is reported to OnError.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil || h.Config.Key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Config.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := int(math.Ceil(time.Until(resetAt).Seconds()))
		headers.Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
		if obs.RateLimitedTotal != nil {
			obs.RateLimitedTotal.WithLabelValues(obs.Route(r, "unknown")).Inc()
		}
		common.JSONError(w, http.StatusTooManyRequests, common.CodeRateLimit, "rate limit exceeded", map[string]any{
			"retryAfterSeconds": max(retryAfter, 1),
		})
	})
}
