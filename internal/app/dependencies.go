package app

import (
	"context"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/ishtar-commerce/internal/audit"
	"github.com/noah-isme/ishtar-commerce/internal/cache"
	"github.com/noah-isme/ishtar-commerce/internal/checkout"
	"github.com/noah-isme/ishtar-commerce/internal/common"
	"github.com/noah-isme/ishtar-commerce/internal/config"
	"github.com/noah-isme/ishtar-commerce/internal/finance"
	"github.com/noah-isme/ishtar-commerce/internal/obs"
	"github.com/noah-isme/ishtar-commerce/internal/payment"
	"github.com/noah-isme/ishtar-commerce/internal/promotion"
	"github.com/noah-isme/ishtar-commerce/internal/ratelimit"
	"github.com/noah-isme/ishtar-commerce/internal/refdata"
	"github.com/noah-isme/ishtar-commerce/internal/resilience"
	"github.com/noah-isme/ishtar-commerce/internal/shipping"
)

// Dependencies enumerates the services shared across HTTP handlers.
type Dependencies struct {
	Context         context.Context
	Config          *config.Config
	Logger          zerolog.Logger
	Redis           *redis.Client
	Tables          *refdata.Tables
	Validator       *validator.Validate
	Limiter         ratelimit.Fixed
	LimiterStore    limiter.Store
	MetricsRegistry *prometheus.Registry
	HTTPMetrics     *obs.HTTPMetrics

	Shipping   *shipping.Calculator
	Payments   *payment.Router
	Risk       payment.RiskAssessor
	Promotions *promotion.Engine
	Finance    *finance.Calculator
	Checkout   *checkout.Service
	AuditStore audit.Store
	Audit      *audit.Service
}

// Build loads reference data and wires every engine. Redis is optional; when
// REDIS_URL is empty the quote cache is disabled and the audit trail and rate
// limiter stay in process.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	tables, err := loadTables(cfg.RefDataPath)
	if err != nil {
		return nil, err
	}
	for _, w := range tables.Warnings() {
		logger.Warn().Str("component", "refdata").Msg(w)
	}

	deps := &Dependencies{
		Context:         ctx,
		Config:          cfg,
		Logger:          logger,
		Tables:          tables,
		Validator:       common.Validator(),
		MetricsRegistry: prometheus.NewRegistry(),
	}
	deps.MetricsRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, deps.MetricsRegistry)
	resilience.MustRegisterMetrics(cfg.Obs.MetricsNamespace, deps.MetricsRegistry)
	if cfg.Obs.MetricsEnabled {
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), deps.MetricsRegistry)
	}

	if cfg.RedisURL != "" {
		client, err := NewRedis(ctx, cfg.RedisURL, cfg.Obs.MetricsEnabled, logger)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
	}

	deps.LimiterStore, err = ratelimit.NewStore(deps.redisClient(), "ishtar:limit")
	if err != nil {
		return nil, fmt.Errorf("limiter store: %w", err)
	}
	if cfg.RateLimitPerMinute > 0 {
		deps.Limiter = ratelimit.NewFixed(deps.LimiterStore, int64(cfg.RateLimitPerMinute))
	}

	deps.Shipping = shipping.NewCalculator(shipping.Config{
		Zones:    tables.Zones,
		Carriers: tables.Carriers,
		Methods:  tables.ShippingMethods,
		Rules:    tables.ZoneRules,
		Logger:   &logger,
	})
	deps.Payments = payment.NewRouter(payment.Config{
		Gateways: tables.Gateways,
		Methods:  tables.PaymentMethods,
		Logger:   &logger,
	})
	deps.Risk = payment.DefaultRiskAssessor()
	deps.Promotions = promotion.NewEngine(nil)
	currencies := tables.CurrencyTable()
	deps.Finance = finance.NewCalculator(finance.Config{
		Products:   tables.Products,
		Currencies: currencies,
		Gateways:   deps.Payments,
		Logger:     &logger,
	})

	giftWrap := cfg.GiftWrapFee
	breaker := resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("quote_cache").WithLogger(logger)
	deps.Checkout = &checkout.Service{
		Shipping:     deps.Shipping,
		Payments:     deps.Payments,
		Promotions:   deps.Promotions,
		PromoList:    tables.Promotions,
		Currencies:   currencies,
		Risk:         deps.Risk,
		Cache:        cache.NewJSON(deps.redisClient(), cfg.ShippingQuoteCacheTTL, "ishtar"),
		GiftWrapFee:  &giftWrap,
		Validate:     deps.Validator,
		Logger:       logger.With().Str("component", "checkout").Logger(),
		CacheBreaker: breaker,
	}

	if deps.Redis != nil {
		deps.AuditStore = audit.NewRedisStore(deps.Redis, "ishtar:audit", cfg.AuditCapacity)
	} else {
		deps.AuditStore = audit.NewMemoryStore(cfg.AuditCapacity)
	}
	deps.Audit = &audit.Service{
		Store:   deps.AuditStore,
		Enabled: cfg.AuditEnabled,
		Logger:  logger.With().Str("component", "audit").Logger(),
	}
	return deps, nil
}

// Close releases external connections.
func (d *Dependencies) Close() error {
	if d == nil || d.Redis == nil {
		return nil
	}
	return d.Redis.Close()
}

// redisClient returns nil as a nil interface when Redis is not configured.
func (d *Dependencies) redisClient() redis.UniversalClient {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}

// NewRedis connects, instruments and pings a Redis client.
func NewRedis(ctx context.Context, url string, metrics bool, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func loadTables(path string) (*refdata.Tables, error) {
	if path == "" {
		return refdata.Default()
	}
	tables, err := refdata.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load reference data %s: %w", path, err)
	}
	return tables, nil
}
