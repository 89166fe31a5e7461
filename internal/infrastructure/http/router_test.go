package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/domain/purge"
	"housekeeper/internal/infrastructure/metrics"
	"housekeeper/pkg/logger"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func serve(t *testing.T, cfg RouterConfig, path string) *httptest.ResponseRecorder {
	t.Helper()
	cfg.Logger = logger.Nop()
	router := NewRouter(cfg)

	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	rec := serve(t, RouterConfig{Database: fakeDB{}}, "/health/live")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(t, RouterConfig{Database: fakeDB{}}, "/health/ready")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"healthy"`)

	rec = serve(t, RouterConfig{Database: fakeDB{err: errors.New("connection refused")}}, "/health/ready")
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = serve(t, RouterConfig{Database: fakeDB{}, Version: "1.2.3"}, "/health/info")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"app":"housekeeper","version":"1.2.3"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	rec.TargetDone(purge.PageHits, purge.ModeExecuted, 12)

	resp := serve(t, RouterConfig{Database: fakeDB{}, Gatherer: reg}, "/metrics")
	require.Equal(t, nethttp.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `housekeeper_rows_total{mode="executed",target="page_hits"} 12`)
}

func TestRequestID(t *testing.T) {
	router := NewRouter(RouterConfig{Database: fakeDB{}, Logger: logger.Nop()})

	req := httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "scrape-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "scrape-1", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/health/live", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}
