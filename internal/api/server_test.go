package api

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/quant/internal/analysis"
	"github.com/newthinker/quant/internal/collector"
	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixtureBars(n int) []core.Bar {
	start := time.Now().UTC().AddDate(0, 0, -n)
	bars := make([]core.Bar, n)
	for i := range bars {
		c := 80 + 0.05*float64(i) + math.Sin(float64(i)*0.3)
		bars[i] = core.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1e4}
	}
	return bars
}

func newTestServer(t *testing.T, apiKey string, reg *metrics.Registry) *Server {
	t.Helper()
	src := collector.NewMemory("memory")
	src.Set("AAPL", fixtureBars(250))
	src.Set("SPY", fixtureBars(250))

	svc, err := analysis.NewService(src, analysis.DefaultOptions(), zap.NewNop(), reg)
	require.NoError(t, err)

	srv, err := NewServer(Config{
		Host:   "localhost",
		Port:   0,
		APIKey: apiKey,
	}, Dependencies{Analyzer: svc, Metrics: reg}, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func do(srv *Server, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServer_RequiresAnalyzer(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, nil)
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, "test-key", nil)

	// health stays open even with auth enabled
	w := do(srv, "GET", "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_APIAuth_Required(t *testing.T) {
	srv := newTestServer(t, "test-key", nil)

	w := do(srv, "GET", "/api/v1/indicators/AAPL", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_APIAuth_ValidKey(t *testing.T) {
	srv := newTestServer(t, "test-key", nil)

	w := do(srv, "GET", "/api/v1/indicators/AAPL", nil, map[string]string{"X-API-Key": "test-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_APIAuth_Disabled(t *testing.T) {
	srv := newTestServer(t, "", nil)

	w := do(srv, "GET", "/api/v1/indicators/AAPL", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "", nil)

	w := do(srv, "DELETE", "/api/v1/indicators/AAPL", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_RiskRoute(t *testing.T) {
	srv := newTestServer(t, "", nil)

	body := []byte(`{"positions":[{"ticker":"AAPL","quantity":10,"market_value":1000}],"total_value":1000}`)
	w := do(srv, "POST", "/api/v1/portfolios/solo/risk", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"portfolio_id":"solo"`)
	assert.Contains(t, w.Body.String(), `"var_95"`)
}

func TestServer_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	srv := newTestServer(t, "", reg)

	do(srv, "GET", "/api/v1/indicators/AAPL", nil, nil)

	w := do(srv, "GET", "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	out, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(out)
	assert.True(t, strings.Contains(text, `quant_computations_total{engine="indicators",status="ok"} 1`), text)
	assert.Contains(t, text, `http_requests_total{method="GET",path="GET /api/v1/indicators/{ticker}",status="2xx"} 1`)
}

func TestServer_NoMetricsRouteWithoutRegistry(t *testing.T) {
	srv := newTestServer(t, "", nil)

	w := do(srv, "GET", "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
