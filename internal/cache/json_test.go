package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ishtar-commerce/internal/cache"
)

type payload struct {
	Zone  string          `json:"zone"`
	Total decimal.Decimal `json:"total"`
}

func TestJSONRoundTripWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewJSON(client, time.Minute, "test")
	ctx := context.Background()

	var out payload
	found, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "k", payload{Zone: "SA_MAIN", Total: decimal.RequireFromString("25.5")}))
	require.True(t, mr.Exists("test:k"))

	found, err = c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "SA_MAIN", out.Zone)
	require.True(t, out.Total.Equal(decimal.RequireFromString("25.5")))

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestJSONWithoutClientIsAMiss(t *testing.T) {
	t.Parallel()

	c := cache.NewJSON(nil, time.Minute, "")
	require.False(t, c.Enabled())
	require.NoError(t, c.SetJSON(context.Background(), "k", 1))
	found, err := c.GetJSON(context.Background(), "k", new(int))
	require.NoError(t, err)
	require.False(t, found)
}

func TestKeyShippingOptions(t *testing.T) {
	t.Parallel()

	key := cache.KeyShippingOptions("sa_main", decimal.RequireFromString("2.5"), decimal.NewFromInt(600))
	require.Equal(t, "shipping:options:SA_MAIN:w2.5:s600", key)
}
