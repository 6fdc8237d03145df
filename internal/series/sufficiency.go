// Package series holds the shared sufficiency thresholds and the helpers
// that normalize and align bar series before any engine touches them.
package series

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/quant/internal/core"
)

// Computation names used in sufficiency failures.
const (
	Indicators = "indicators"
	Risk       = "risk"
	Returns    = "returns"
)

// Policy holds the minimum input sizes for every computation.
type Policy struct {
	// MinIndicatorBars is the history needed for the indicator snapshot (SMA_200).
	MinIndicatorBars int
	// MinRiskBars is the aligned history needed for portfolio risk.
	MinRiskBars int
	// MinReturns is the number of portfolio returns needed for VaR and volatility.
	MinReturns int
	// MinBenchmarkPoints is the aligned return count needed for beta and
	// relative strength. Below it the benchmark is treated as unavailable.
	MinBenchmarkPoints int
}

// DefaultPolicy returns the thresholds both engines share.
func DefaultPolicy() Policy {
	return Policy{
		MinIndicatorBars:   200,
		MinRiskBars:        30,
		MinReturns:         30,
		MinBenchmarkPoints: 30,
	}
}

// ShortfallError describes how far an input is below its minimum.
type ShortfallError struct {
	Computation string
	Required    int
	Actual      int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: need ≥%d, got %d", e.Computation, e.Required, e.Actual)
}

// MissingSeriesError lists tickers that have no bars at all.
type MissingSeriesError struct {
	Tickers []string
}

func (e *MissingSeriesError) Error() string {
	return "no bars for " + strings.Join(e.Tickers, ", ")
}

// Insufficient builds an INSUFFICIENT_DATA error carrying the shortfall.
func Insufficient(computation string, required, actual int) error {
	return core.WrapError(core.ErrInsufficientData, &ShortfallError{
		Computation: computation,
		Required:    required,
		Actual:      actual,
	})
}

// Missing builds a MISSING_SERIES error. Tickers are reported sorted.
func Missing(tickers []string) error {
	sorted := append([]string(nil), tickers...)
	sort.Strings(sorted)
	return core.WrapError(core.ErrMissingSeries, &MissingSeriesError{Tickers: sorted})
}

// RequireBars checks a single series for the indicator snapshot.
// Zero bars is NO_DATA, which callers treat differently from a shortfall.
func (p Policy) RequireBars(ticker string, n int) error {
	if n == 0 {
		return core.WrapError(core.ErrNoData, fmt.Errorf("ticker %s", ticker))
	}
	if n < p.MinIndicatorBars {
		return Insufficient(Indicators, p.MinIndicatorBars, n)
	}
	return nil
}

// RequireAligned checks the common length of a multi-series computation.
func (p Policy) RequireAligned(n int) error {
	if n < p.MinRiskBars {
		return Insufficient(Risk, p.MinRiskBars, n)
	}
	return nil
}

// RequireReturns checks the number of usable returns.
func (p Policy) RequireReturns(n int) error {
	if n < p.MinReturns {
		return Insufficient(Returns, p.MinReturns, n)
	}
	return nil
}

// BenchmarkUsable reports whether n aligned benchmark points are enough.
func (p Policy) BenchmarkUsable(n int) bool {
	return n >= p.MinBenchmarkPoints
}
