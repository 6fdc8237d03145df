package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/quant/internal/collector"
	"github.com/newthinker/quant/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahoo_ImplementsSource(t *testing.T) {
	var _ collector.Source = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	assert.Equal(t, "yahoo", New().Name())
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"000001.SZ", "000001.SZ"},
	}

	y := New()
	for _, tc := range tests {
		assert.Equal(t, tc.expected, y.toYahooSymbol(tc.input), tc.input)
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, ok := range []string{"AAPL", "BRK-B", "^GSPC", "0700.HK"} {
		assert.NoError(t, validateSymbol(ok), ok)
	}
	for _, bad := range []string{"", "AAPL;DROP", "../etc", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"} {
		assert.Error(t, validateSymbol(bad), bad)
	}
}

func TestYahoo_ToYahooInterval(t *testing.T) {
	y := New()
	assert.Equal(t, "1d", y.toYahooInterval("1d"))
	assert.Equal(t, "1wk", y.toYahooInterval("1w"))
	assert.Equal(t, "1h", y.toYahooInterval("1h"))
	assert.Equal(t, "1d", y.toYahooInterval("3d"))
}

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {"quote": [{
        "open":   [187.15, null, 182.15],
        "high":   [188.44, 185.88, 183.09],
        "low":    [183.89, 183.43, 180.88],
        "close":  [185.64, 184.25, 181.91],
        "volume": [82488700, 58414500, null]
      }]}
    }],
    "error": null
  }
}`

func TestYahoo_FetchHistory(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	y := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := y.FetchHistory(context.Background(), "600519.SH", from, to, "1d")
	require.NoError(t, err)

	assert.Equal(t, "/600519.SS", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, "period1=1704067200")

	// the row with a null open is dropped
	require.Len(t, bars, 2)
	assert.Equal(t, []float64{185.64, 181.91}, core.Closes(bars))
	assert.Equal(t, 82488700.0, bars[0].Volume)
	assert.Zero(t, bars[1].Volume)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahoo_FetchHistory_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	bars, err := New(WithBaseURL(srv.URL)).FetchHistory(context.Background(), "ZZZZ", time.Time{}, time.Now(), "1d")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahoo_FetchHistory_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).FetchHistory(context.Background(), "AAPL", time.Time{}, time.Now(), "1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestYahoo_FetchHistory_InvalidSymbol(t *testing.T) {
	_, err := New().FetchHistory(context.Background(), "not a ticker", time.Time{}, time.Now(), "1d")
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestYahoo_FetchHistory_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithBaseURL(srv.URL)).FetchHistory(ctx, "AAPL", time.Time{}, time.Now(), "1d")
	assert.ErrorIs(t, err, context.Canceled)
}
