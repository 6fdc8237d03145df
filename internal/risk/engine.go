// Package risk computes portfolio-level risk metrics from aligned price
// histories: historical VaR, beta, volatility and concentration.
package risk

import (
	"fmt"

	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/series"
)

// Config defines risk estimation parameters.
type Config struct {
	// Confidence is the VaR confidence level.
	Confidence float64
	// TradingDays is the number of periods per year used for annualizing.
	TradingDays int
	// TopHoldings is the number of heaviest positions reported.
	TopHoldings int
}

// DefaultConfig returns a Config with the standard 95% / 252 / top 3 values.
func DefaultConfig() Config {
	return Config{
		Confidence:  0.95,
		TradingDays: 252,
		TopHoldings: 3,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("confidence must be between 0 and 1, got %f", c.Confidence))
	}
	if c.TradingDays <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trading_days must be positive, got %d", c.TradingDays))
	}
	if c.TopHoldings <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("top_holdings must be positive, got %d", c.TopHoldings))
	}
	return nil
}

// Input is everything one risk computation needs. Bars maps each ticker
// to its ascending history; Benchmark may be nil.
type Input struct {
	Positions  []core.Position
	Bars       map[string][]core.Bar
	Benchmark  []core.Bar
	TotalValue float64
}

// Metrics is one risk snapshot of a portfolio.
type Metrics struct {
	VaR95         float64        `json:"var_95"`
	Beta          float64        `json:"beta"`
	Volatility    float64        `json:"volatility"`
	Concentration Concentration  `json:"concentration"`
	DataPoints    int            `json:"data_points"`
	MaxDrawdown   float64        `json:"max_drawdown"`
	SharpeRatio   float64        `json:"sharpe_ratio"`
	Warnings      []core.Warning `json:"warnings,omitempty"`
}

// BetaDegraded reports whether beta is the fallback caused by a missing
// or short benchmark.
func (m *Metrics) BetaDegraded() bool {
	for _, w := range m.Warnings {
		if w.Code == core.WarnBenchmarkUnavailable || w.Code == core.WarnBenchmarkInsufficient {
			return true
		}
	}
	return false
}

// Engine computes risk metrics. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	config Config
	policy series.Policy
}

// NewEngine creates an engine with the given configuration and policy.
func NewEngine(config Config, policy series.Policy) *Engine {
	return &Engine{config: config, policy: policy}
}

// Compute runs the full pipeline: alignment, value series, returns, VaR,
// beta, volatility and concentration. A ticker without bars aborts the
// computation; a missing benchmark only degrades beta to DefaultBeta.
func (e *Engine) Compute(in Input) (*Metrics, error) {
	holdings := core.Portfolio{Positions: in.Positions}.Holdings()
	if len(holdings) == 0 {
		return nil, core.ErrNoPositions
	}
	if in.TotalValue <= 0 {
		return nil, core.WrapError(core.ErrInvalidInput, errTotalValue(in.TotalValue))
	}

	held := make(map[string][]core.Bar, len(holdings))
	var missing []string
	for _, pos := range holdings {
		if _, seen := held[pos.Ticker]; seen {
			continue
		}
		bars := in.Bars[pos.Ticker]
		if len(bars) == 0 {
			missing = append(missing, pos.Ticker)
			held[pos.Ticker] = nil
			continue
		}
		held[pos.Ticker] = bars
	}
	if len(missing) > 0 {
		return nil, series.Missing(missing)
	}

	aligned := series.Align(held)
	if err := e.policy.RequireAligned(aligned.Length); err != nil {
		return nil, err
	}

	values := ValueSeries(aligned, holdings)
	returns := Returns(values)
	if err := e.policy.RequireReturns(len(returns)); err != nil {
		return nil, err
	}

	conc, err := CalculateConcentration(holdings, in.TotalValue, e.config.TopHoldings)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		VaR95:         HistoricalVaR(returns, e.config.Confidence),
		Volatility:    AnnualizedVolatility(returns, e.config.TradingDays),
		Concentration: conc,
		DataPoints:    len(returns),
		MaxDrawdown:   MaxDrawdown(values),
		SharpeRatio:   SharpeRatio(returns, e.config.TradingDays),
	}
	m.Beta, m.Warnings = e.beta(returns, in.Benchmark)

	return m, nil
}

func (e *Engine) beta(returns []float64, benchmark []core.Bar) (float64, []core.Warning) {
	if len(benchmark) == 0 {
		return DefaultBeta, []core.Warning{{
			Code:    core.WarnBenchmarkUnavailable,
			Message: "benchmark unavailable, beta defaults to 1.0",
		}}
	}

	p, b := series.AlignPair(returns, Returns(core.Closes(benchmark)))
	if !e.policy.BenchmarkUsable(len(b)) {
		return DefaultBeta, []core.Warning{{
			Code:    core.WarnBenchmarkInsufficient,
			Message: fmt.Sprintf("benchmark has %d aligned returns, need %d; beta defaults to 1.0", len(b), e.policy.MinBenchmarkPoints),
		}}
	}

	return Beta(p, b), nil
}

func errTotalValue(v float64) error {
	return fmt.Errorf("total value must be positive, got %f", v)
}
