package audit

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ishtar-commerce/internal/common"
	"github.com/noah-isme/ishtar-commerce/internal/obs"
)

// ErrStoreNotConfigured is returned when recording without a store.
var ErrStoreNotConfigured = errors.New("audit: store not configured")

// Service appends audit entries for privileged actions.
type Service struct {
	Store        Store
	Enabled      bool
	SamplingRate float64
	Now          func() time.Time
	Logger       zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Record fills the entry id and timestamp and appends it to the store.
// Disabled services and sampled-out entries are dropped silently.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if s == nil || !s.Enabled {
		return nil
	}
	if s.SamplingRate > 0 && s.SamplingRate < 1 && rand.Float64() > s.SamplingRate {
		return nil
	}
	if s.Store == nil {
		return ErrStoreNotConfigured
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = s.now()
	}
	e.Action = buildAction(e.Action, e.Method, e.Route)
	e.EntityType = buildResource(e.EntityType, e.Route)
	if e.ActorRole == "" {
		if actor, ok := common.ActorFrom(ctx); ok {
			e.ActorID, e.ActorRole = actor.ID, actor.Role
		}
	}
	e.ActorRole = normalizeRole(e.ActorRole)

	err := s.Store.Record(ctx, e)
	result := "ok"
	if err != nil {
		result = "error"
		s.Logger.Error().Err(err).Str("action", e.Action).Str("entity", e.EntityType).Msg("audit record failed")
	}
	if obs.AuditRecordsTotal != nil {
		obs.AuditRecordsTotal.WithLabelValues(e.Action, result).Inc()
	}
	return err
}

// RecordRequest records an entry describing a handled HTTP request.
func (s *Service) RecordRequest(ctx context.Context, req *http.Request, status int, e Entry) error {
	if req == nil {
		return errors.New("audit: request is required")
	}
	e.Method = req.Method
	e.Route = obs.Route(req, strings.TrimSpace(req.URL.Path))
	e.IP = common.ClientIP(req)
	e.RequestID = strings.TrimSpace(req.Header.Get("X-Request-ID"))
	e.Status = status
	if e.Status == 0 {
		e.Status = http.StatusOK
	}
	if len(e.Details) == 0 {
		e.Details = queryDetails(req.URL.RawQuery)
	}
	return s.Record(ctx, e)
}

func buildAction(action, method, route string) string {
	trimmed := strings.TrimSpace(action)
	if trimmed != "" {
		return trimmed
	}
	base := strings.ToUpper(strings.TrimSpace(method))
	target := route
	if target == "" {
		target = "/"
	}
	return strings.TrimSpace(base + " " + target)
}

func buildResource(resourceType, route string) string {
	trimmed := strings.TrimSpace(resourceType)
	if trimmed != "" {
		return trimmed
	}
	route = strings.TrimSpace(route)
	if route == "" {
		return "unknown"
	}
	segments := strings.Split(strings.Trim(route, "/"), "/")
	if len(segments) >= 3 && segments[0] == "api" && segments[1] == "v1" {
		return strings.Join(segments[2:], ".")
	}
	return strings.ReplaceAll(strings.Trim(route, "/"), "/", ".")
}

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return "anonymous"
	}
	return role
}

func queryDetails(query string) json.RawMessage {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	data, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil
	}
	return data
}
