package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ishtar-commerce/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"APP_ENV":                  "",
		"PORT":                     "",
		"REDIS_URL":                "",
		"GIFT_WRAP_FEE":            "",
		"RATE_LIMIT_PER_MINUTE":    "",
		"SHIPPING_QUOTE_CACHE_TTL": "",
		"CORS_ALLOWED_ORIGINS":     "",
		"OBS_ENABLE_TRACING":       "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, "35", cfg.GiftWrapFee.String())
	require.Equal(t, 120, cfg.RateLimitPerMinute)
	require.Equal(t, 5*time.Minute, cfg.ShippingQuoteCacheTTL)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	require.False(t, cfg.Obs.TracingEnabled)
	require.Equal(t, "ishtar", cfg.Obs.MetricsNamespace)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PORT":                       ":9090",
		"REDIS_URL":                  "redis://localhost:6379/0",
		"GIFT_WRAP_FEE":              "12.5",
		"RATE_LIMIT_PER_MINUTE":      "30",
		"SHIPPING_QUOTE_CACHE_TTL":   "90s",
		"CORS_ALLOWED_ORIGINS":       "https://a.example, https://b.example",
		"OBS_ENABLE_TRACING":         "true",
		"OBS_TRACING_SAMPLING_RATIO": "0.25",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, "12.5", cfg.GiftWrapFee.String())
	require.Equal(t, 30, cfg.RateLimitPerMinute)
	require.Equal(t, 90*time.Second, cfg.ShippingQuoteCacheTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
	require.True(t, cfg.Obs.TracingEnabled)
	require.InDelta(t, 0.25, cfg.Obs.SamplingRatio, 1e-9)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"GIFT_WRAP_FEE": "abc"})
	require.Error(t, err)

	_, err = config.LoadForTests(map[string]string{"GIFT_WRAP_FEE": "-1"})
	require.Error(t, err)

	_, err = config.LoadForTests(map[string]string{"RATE_LIMIT_PER_MINUTE": "-5"})
	require.Error(t, err)
}
