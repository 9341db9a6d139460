package audit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/ishtar-commerce/internal/obs"
)

// HTTPRecorder writes an audit entry after a privileged handler ran.
type HTTPRecorder struct {
	Service *Service
	OnError func(error)
}

// HTTPConfig describes the entry produced for one route.
type HTTPConfig struct {
	Action        string
	EntityType    string
	EntityIDParam string
	// DetailsFunc adds route specific details. The response status and the
	// handler duration are always included.
	DetailsFunc func(*http.Request, int) map[string]any
}

// Middleware records the request once the wrapped handler has responded.
func (r HTTPRecorder) Middleware(cfg HTTPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if r.Service == nil || !r.Service.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			recorder := obs.NewStatusRecorder(w)
			start := time.Now()
			next.ServeHTTP(recorder, req)

			status := recorder.Status()
			entry := Entry{Action: cfg.Action, EntityType: cfg.EntityType}
			if cfg.EntityIDParam != "" {
				entry.EntityID = chi.URLParam(req, cfg.EntityIDParam)
			}
			details := map[string]any{}
			if cfg.DetailsFunc != nil {
				for k, v := range cfg.DetailsFunc(req, status) {
					details[k] = v
				}
			}
			details["status"] = status
			details["durationMs"] = time.Since(start).Milliseconds()
			if data, err := json.Marshal(details); err == nil {
				entry.Details = data
			}

			if err := r.Service.RecordRequest(req.Context(), req, status, entry); err != nil && r.OnError != nil {
				r.OnError(err)
			}
		})
	}
}
