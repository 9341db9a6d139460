package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ishtar-commerce/internal/health"
)

type countingChecker struct{ calls int }

func (c *countingChecker) PingRedis(context.Context, time.Duration) error {
	c.calls++
	return nil
}

func TestReadyDrainsDuringShutdown(t *testing.T) {
	checker := &countingChecker{}
	handler := health.Handler{Checker: checker, RefData: func() error { return nil }}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	t.Cleanup(func() { health.SetReady(true) })

	health.SetReady(true)
	rr := httptest.NewRecorder()
	handler.Ready(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, checker.calls)

	health.SetReady(false)
	rr = httptest.NewRecorder()
	handler.Ready(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "shutting_down", decodeStatus(t, rr)["status"])
	require.Equal(t, 1, checker.calls, "dependencies are not probed while draining")

	rr = httptest.NewRecorder()
	handler.Live(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
