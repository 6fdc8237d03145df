package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/quant/internal/analysis"
	"github.com/newthinker/quant/internal/api/response"
	"github.com/newthinker/quant/internal/collector"
	"github.com/newthinker/quant/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waveBars(n int, phase float64) []core.Bar {
	start := time.Now().UTC().AddDate(0, 0, -n)
	bars := make([]core.Bar, n)
	for i := range bars {
		x := float64(i)
		c := 50 + 0.1*x + 2*math.Sin(x*0.4+phase)
		bars[i] = core.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c - 0.2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 5e5,
		}
	}
	return bars
}

func newService(t *testing.T) *analysis.Service {
	t.Helper()
	src := collector.NewMemory("memory")
	src.Set("AAPL", waveBars(260, 0))
	src.Set("MSFT", waveBars(260, 1))
	src.Set("TINY", waveBars(50, 0))
	src.Set("SPY", waveBars(260, 2))

	svc, err := analysis.NewService(src, analysis.DefaultOptions(), zap.NewNop(), nil)
	require.NoError(t, err)
	return svc
}

func serve(h http.HandlerFunc, pattern, method, target string, body []byte) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestIndicatorsHandler_Get(t *testing.T) {
	h := NewIndicatorsHandler(newService(t))

	w := serve(h.Get, "GET /api/v1/indicators/{ticker}", "GET", "/api/v1/indicators/aapl", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data analysis.TechnicalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Snapshot)
	assert.Equal(t, "AAPL", resp.Data.Ticker)
	assert.Equal(t, 260, resp.Data.DataPoints)
	assert.Greater(t, resp.Data.CurrentPrice, 0.0)
}

func TestIndicatorsHandler_Get_Insufficient(t *testing.T) {
	h := NewIndicatorsHandler(newService(t))

	w := serve(h.Get, "GET /api/v1/indicators/{ticker}", "GET", "/api/v1/indicators/TINY", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Error.Code)
	assert.Equal(t, "indicators: need ≥200, got 50", resp.Error.Cause)
}

func TestIndicatorsHandler_Get_NoData(t *testing.T) {
	h := NewIndicatorsHandler(newService(t))

	w := serve(h.Get, "GET /api/v1/indicators/{ticker}", "GET", "/api/v1/indicators/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndicatorsHandler_Batch(t *testing.T) {
	h := NewIndicatorsHandler(newService(t))

	body := []byte(`{"tickers":["AAPL","TINY","NOPE"]}`)
	w := serve(h.Batch, "POST /api/v1/indicators", "POST", "/api/v1/indicators", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Count   int              `json:"count"`
			Results []map[string]any `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Count)
	require.Len(t, resp.Data.Results, 3)

	assert.Contains(t, resp.Data.Results[0], "indicators")
	assert.NotContains(t, resp.Data.Results[0], "error")
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Data.Results[1]["error"].(map[string]any)["code"])
	assert.Equal(t, "NO_DATA", resp.Data.Results[2]["error"].(map[string]any)["code"])
}

func TestIndicatorsHandler_Batch_Validation(t *testing.T) {
	h := NewIndicatorsHandler(newService(t))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"tickers":`, http.StatusBadRequest},
		{"unknown field", `{"symbols":["AAPL"]}`, http.StatusBadRequest},
		{"empty", `{"tickers":[]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h.Batch, "POST /api/v1/indicators", "POST", "/api/v1/indicators", []byte(tt.body))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	tickers := make([]string, MaxBatchTickers+1)
	for i := range tickers {
		tickers[i] = "AAPL"
	}
	body, _ := json.Marshal(map[string]any{"tickers": tickers})
	w := serve(h.Batch, "POST /api/v1/indicators", "POST", "/api/v1/indicators", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

const riskBody = `{
  "positions": [
    {"ticker": "AAPL", "quantity": 100, "market_value": 60000},
    {"ticker": "MSFT", "quantity": 40, "market_value": 30000},
    {"ticker": "CASH", "quantity": 1, "market_value": 10000}
  ],
  "total_value": 100000
}`

func TestRiskHandler_Compute(t *testing.T) {
	h := NewRiskHandler(newService(t))

	w := serve(h.Compute, "POST /api/v1/portfolios/{id}/risk", "POST", "/api/v1/portfolios/growth/risk", []byte(riskBody))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data analysis.RiskResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "growth", resp.Data.PortfolioID)
	require.NotNil(t, resp.Data.Metrics)
	assert.InDelta(t, 0.6, resp.Data.Metrics.Concentration.MaxPositionWeight, 1e-12)
	assert.Equal(t, "AAPL", resp.Data.Metrics.Concentration.TopHoldings[0].Ticker)
}

func TestRiskHandler_Compute_Errors(t *testing.T) {
	h := NewRiskHandler(newService(t))

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"malformed", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"cash only", `{"positions":[{"ticker":"CASH","market_value":5}],"total_value":5}`, http.StatusUnprocessableEntity, "NO_POSITIONS"},
		{"zero total", `{"positions":[{"ticker":"AAPL","market_value":5}],"total_value":0}`, http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"missing series", `{"positions":[{"ticker":"NOPE","market_value":5}],"total_value":5}`, http.StatusUnprocessableEntity, "MISSING_SERIES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h.Compute, "POST /api/v1/portfolios/{id}/risk", "POST", "/api/v1/portfolios/p1/risk", []byte(tt.body))
			assert.Equal(t, tt.want, w.Code)

			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

// stubAnalyzer records the context it was called with.
type stubAnalyzer struct {
	gotID string
}

func (s *stubAnalyzer) Risk(ctx context.Context, id string, p core.Portfolio) analysis.RiskResult {
	s.gotID = id
	return analysis.RiskResult{PortfolioID: id}
}

func TestRiskHandler_PassesPathID(t *testing.T) {
	stub := &stubAnalyzer{}
	h := NewRiskHandler(stub)

	serve(h.Compute, "POST /api/v1/portfolios/{id}/risk", "POST", "/api/v1/portfolios/abc-123/risk", []byte(riskBody))
	assert.Equal(t, "abc-123", stub.gotID)
}
