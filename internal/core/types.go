package core

import "time"

// CashTicker marks the cash line of a portfolio. It never takes part in
// risk or concentration computation.
const CashTicker = "CASH"

// Bar represents one OHLCV period. Series of bars are ordered oldest to newest.
type Bar struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TypicalPrice returns (high+low+close)/3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Range returns high-low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Closes extracts closing prices in series order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Position is one portfolio holding.
type Position struct {
	Ticker      string  `json:"ticker"`
	Quantity    float64 `json:"quantity"`
	MarketValue float64 `json:"market_value"`
}

// IsCash reports whether the position is the cash line.
func (p Position) IsCash() bool {
	return p.Ticker == CashTicker
}

// Portfolio is the snapshot handed over by the portfolio store.
type Portfolio struct {
	Positions  []Position `json:"positions"`
	TotalValue float64    `json:"total_value"`
}

// Holdings returns the non-cash positions in their original order.
func (p Portfolio) Holdings() []Position {
	out := make([]Position, 0, len(p.Positions))
	for _, pos := range p.Positions {
		if !pos.IsCash() {
			out = append(out, pos)
		}
	}
	return out
}

// Warning codes for results computed on a degraded input.
const (
	WarnBenchmarkUnavailable  = "BENCHMARK_UNAVAILABLE"
	WarnBenchmarkInsufficient = "BENCHMARK_INSUFFICIENT"
)

// Warning tags a result that succeeded on degraded input, such as a
// missing benchmark. It is never an error.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
