// Package httpapi assembles the public and admin HTTP surface.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/ishtar-commerce/internal/app"
	"github.com/noah-isme/ishtar-commerce/internal/audit"
	"github.com/noah-isme/ishtar-commerce/internal/checkout"
	"github.com/noah-isme/ishtar-commerce/internal/common"
	"github.com/noah-isme/ishtar-commerce/internal/finance"
	"github.com/noah-isme/ishtar-commerce/internal/health"
	"github.com/noah-isme/ishtar-commerce/internal/money"
	"github.com/noah-isme/ishtar-commerce/internal/obs"
	"github.com/noah-isme/ishtar-commerce/internal/payment"
	"github.com/noah-isme/ishtar-commerce/internal/promotion"
	"github.com/noah-isme/ishtar-commerce/internal/rbac"
	"github.com/noah-isme/ishtar-commerce/internal/ratelimit"
	"github.com/noah-isme/ishtar-commerce/internal/security"
	"github.com/noah-isme/ishtar-commerce/internal/shipping"
)

// MaxBodyBytes caps request payloads.
const MaxBodyBytes = 1 << 20

// NewRouter builds the HTTP handler from wired dependencies.
func NewRouter(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.Obs.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if deps.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: deps.HTTPMetrics}.Middleware)
	}
	r.Use(common.ActorMiddleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", common.HeaderActorID, common.HeaderActorRole},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))

	if cfg.Obs.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{Registry: deps.MetricsRegistry}))
	}

	healthHandler := health.Handler{
		RedisTimeout: 300 * time.Millisecond,
		RefData: func() error {
			if deps.Tables == nil {
				return errors.New("reference data not loaded")
			}
			return nil
		},
	}
	if deps.Redis != nil {
		healthHandler.Checker = redisChecker{client: deps.Redis}
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	shipHandler := shipping.Handler{Calc: deps.Shipping}
	payHandler := payment.Handler{Router: deps.Payments, Risk: deps.Risk}
	promoHandler := promotion.Handler{Engine: deps.Promotions, Promotions: deps.Tables.Promotions}
	moneyHandler := money.Handler{Table: deps.Tables.CurrencyTable()}
	checkoutHandler := &checkout.Handler{Svc: deps.Checkout}
	financeHandler := finance.Handler{Calc: deps.Finance}
	auditHandler := audit.Handler{Store: deps.AuditStore}
	recorder := audit.HTTPRecorder{
		Service: deps.Audit,
		OnError: func(err error) { logger.Error().Err(err).Msg("audit record") },
	}

	limit := ratelimit.Handler{
		Limiter: deps.Limiter,
		Config:  ratelimit.Config{Key: ratelimit.ActorOrIPKey, Window: time.Minute, Max: deps.Limiter.Max()},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: MaxBodyBytes}.Middleware)

		v.Group(func(pub chi.Router) {
			if deps.Limiter.Limiter != nil {
				pub.Use(limit.Middleware)
			}
			pub.Post("/shipping/zone", shipHandler.Zone)
			pub.Post("/shipping/options", shipHandler.Options)
			pub.Get("/shipping/tracking/{carrierId}/{trackingNumber}", shipHandler.Tracking)
			pub.Post("/payments/gateways", payHandler.Gateways)
			pub.Post("/payments/methods", payHandler.Methods)
			pub.Post("/checkout/quote", checkoutHandler.Quote)
			pub.Post("/promotions/match", promoHandler.Match)
			pub.Post("/promotions/cart", promoHandler.Cart)
			pub.Get("/currency", moneyHandler.Currencies)
			pub.Get("/currency/format", moneyHandler.Format)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.With(
				rbac.Require(rbac.ResourceFinance, rbac.ActionView),
				recorder.Middleware(audit.HTTPConfig{
					Action:     "orders.profit.view",
					EntityType: "orders",
				}),
			).Post("/orders/profit", financeHandler.Profit)
			admin.With(rbac.Require(rbac.ResourceAuditLogs, rbac.ActionView)).Get("/audit-logs", auditHandler.List)
		})
	})

	var handler http.Handler = r
	if cfg.Obs.TracingEnabled {
		handler = otelhttp.NewHandler(r, "ishtar-commerce")
	}
	return handler
}

type redisChecker struct {
	client *redis.Client
}

func (c redisChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}
