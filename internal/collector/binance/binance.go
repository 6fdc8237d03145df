package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/quant/internal/core"
)

const (
	defaultBaseURL = "https://api.binance.com"
	// klineLimit is the largest page the klines endpoint serves.
	klineLimit = 1000
)

// Binance fetches spot klines from the Binance public API. Tickers are
// normalized pairs, so "BTC" and "BTC-USDT" both resolve to BTCUSDT.
type Binance struct {
	client  *http.Client
	baseURL string
}

// New creates a new Binance source
func New() *Binance {
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

// NewWithBaseURL creates a Binance source with custom base URL (for testing)
func NewWithBaseURL(u string) *Binance {
	b := New()
	b.baseURL = strings.TrimSuffix(u, "/")
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistory pages through klines until to is reached. Unknown pairs
// yield no bars.
func (b *Binance) FetchHistory(ctx context.Context, ticker string, from, to time.Time, interval string) ([]core.Bar, error) {
	pair := NormalizeSymbol(ticker, DefaultQuote)
	if err := validatePair(pair); err != nil {
		return nil, core.WrapError(core.ErrInvalidInput, err)
	}

	var bars []core.Bar
	cursor := from
	for {
		page, err := b.fetchPage(ctx, pair, b.toInterval(interval), cursor, to)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return []core.Bar{}, nil
		}
		bars = append(bars, page...)

		if len(page) < klineLimit {
			break
		}
		next := page[len(page)-1].Time.Add(time.Millisecond)
		if !next.Before(to) {
			break
		}
		cursor = next
	}

	if bars == nil {
		bars = []core.Bar{}
	}
	return bars, nil
}

// fetchPage returns nil, nil for an unknown symbol.
func (b *Binance) fetchPage(ctx context.Context, pair, interval string, from, to time.Time) ([]core.Bar, error) {
	q := url.Values{}
	q.Set("symbol", pair)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(to.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(klineLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Code == codeInvalidSymbol {
			return nil, nil
		}
		return nil, fmt.Errorf("binance error %d: %s", apiErr.Code, apiErr.Msg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var klines [][]any
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	bars := make([]core.Bar, 0, len(klines))
	for _, k := range klines {
		bar, ok := parseKline(k)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKline reads [openTime, open, high, low, close, volume, ...].
func parseKline(k []any) (core.Bar, bool) {
	if len(k) < 6 {
		return core.Bar{}, false
	}
	openTime, ok := k[0].(float64)
	if !ok {
		return core.Bar{}, false
	}

	var vals [5]float64
	for i := range vals {
		s, ok := k[i+1].(string)
		if !ok {
			return core.Bar{}, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Bar{}, false
		}
		vals[i] = v
	}

	return core.Bar{
		Time:   time.UnixMilli(int64(openTime)).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true
}

func (b *Binance) toInterval(interval string) string {
	switch interval {
	case "1m", "5m", "15m", "30m":
		return interval
	case "1h", "2h", "4h":
		return interval
	case "1d":
		return "1d"
	case "1w", "1wk":
		return "1w"
	default:
		return "1d"
	}
}

// codeInvalidSymbol is the API error code for an unknown pair.
const codeInvalidSymbol = -1121

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
