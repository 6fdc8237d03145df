package indicator

import (
	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/series"
)

// Standard periods of the snapshot.
const (
	PeriodSMAFast   = 50
	PeriodSMASlow   = 200
	PeriodEMAFast   = 12
	PeriodEMASlow   = 26
	PeriodMACDSig   = 9
	PeriodRSI       = 14
	PeriodBollinger = 20
	BollingerK      = 2.0
	PeriodATR       = 14
	PeriodADX       = 14
)

// Position of the latest close relative to a moving average.
type Position string

const (
	Above Position = "above"
	Below Position = "below"
)

func positionOf(price, average float64) Position {
	if price > average {
		return Above
	}
	return Below
}

// IndicatorSet is the technical snapshot at the most recent bar.
type IndicatorSet struct {
	SMA50  float64 `json:"sma_50"`
	SMA200 float64 `json:"sma_200"`
	EMA12  float64 `json:"ema_12"`
	EMA26  float64 `json:"ema_26"`

	RSI14      float64 `json:"rsi_14"`
	MACDLine   float64 `json:"macd_line"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	BBUpper     float64 `json:"bb_upper"`
	BBMiddle    float64 `json:"bb_middle"`
	BBLower     float64 `json:"bb_lower"`
	BBBandwidth float64 `json:"bb_bandwidth"`
	BBPercentB  float64 `json:"bb_percent_b"`
	ATR14       float64 `json:"atr_14"`

	ADX14   float64 `json:"adx_14"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`

	VWAP float64 `json:"vwap"`
	OBV  float64 `json:"obv"`

	PriceVsSMA50  Position `json:"price_vs_sma50"`
	PriceVsSMA200 Position `json:"price_vs_sma200"`

	Pivots   Pivots    `json:"pivots"`
	Patterns []Pattern `json:"patterns"`

	// RelativeStrength is nil, and omitted, when no usable benchmark exists.
	RelativeStrength *RelativeStrength `json:"relative_strength,omitempty"`
}

// Snapshot is the engine's output for one ticker.
type Snapshot struct {
	Ticker       string         `json:"ticker"`
	Indicators   IndicatorSet   `json:"indicators"`
	CurrentPrice float64        `json:"current_price"`
	DataPoints   int            `json:"data_points"`
	Warnings     []core.Warning `json:"warnings,omitempty"`
}

// Engine computes indicator snapshots. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	policy series.Policy
}

// NewEngine creates an engine with the given sufficiency policy.
func NewEngine(policy series.Policy) *Engine {
	return &Engine{policy: policy}
}

// Compute builds the snapshot for ascending bars. benchmark may be nil;
// the relative strength block is then left out and a warning attached.
func (e *Engine) Compute(ticker string, bars, benchmark []core.Bar) (*Snapshot, error) {
	if err := e.policy.RequireBars(ticker, len(bars)); err != nil {
		return nil, err
	}

	closes := core.Closes(bars)
	price := closes[len(closes)-1]

	sma50, _ := last(SMA(closes, PeriodSMAFast))
	sma200, ok := last(SMA(closes, PeriodSMASlow))
	if !ok {
		return nil, series.Insufficient(series.Indicators, PeriodSMASlow, len(bars))
	}
	ema12, _ := last(EMA(closes, PeriodEMAFast))
	ema26, _ := last(EMA(closes, PeriodEMASlow))
	rsi, _ := last(RSI(closes, PeriodRSI))

	macd := CalculateMACD(closes, PeriodEMAFast, PeriodEMASlow, PeriodMACDSig)
	macdLine, _ := last(macd.Line)
	macdSignal, _ := last(macd.Signal)
	macdHist, _ := last(macd.Histogram)

	bands, _ := Bollinger(closes, PeriodBollinger, BollingerK)
	atr, _ := last(ATR(bars, PeriodATR))
	dmi, _ := ADX(bars, PeriodADX)
	obv, _ := last(OBV(bars))

	set := IndicatorSet{
		SMA50:         sma50,
		SMA200:        sma200,
		EMA12:         ema12,
		EMA26:         ema26,
		RSI14:         rsi,
		MACDLine:      macdLine,
		MACDSignal:    macdSignal,
		MACDHist:      macdHist,
		BBUpper:       bands.Upper,
		BBMiddle:      bands.Middle,
		BBLower:       bands.Lower,
		BBBandwidth:   bands.Bandwidth,
		BBPercentB:    bands.PercentB,
		ATR14:         atr,
		ADX14:         dmi.ADX,
		PlusDI:        dmi.PlusDI,
		MinusDI:       dmi.MinusDI,
		VWAP:          VWAP(bars),
		OBV:           obv,
		PriceVsSMA50:  positionOf(price, sma50),
		PriceVsSMA200: positionOf(price, sma200),
		Pivots:        StandardPivots(bars[len(bars)-2]),
		Patterns:      DetectPatterns(bars),
	}

	snap := &Snapshot{
		Ticker:       ticker,
		CurrentPrice: price,
		DataPoints:   len(bars),
	}

	if len(benchmark) == 0 {
		snap.Warnings = append(snap.Warnings, core.Warning{
			Code:    core.WarnBenchmarkUnavailable,
			Message: "benchmark unavailable, relative strength omitted",
		})
	} else if rs, ok := CompareWithBenchmark(closes, core.Closes(benchmark), e.policy.MinBenchmarkPoints); ok {
		set.RelativeStrength = rs
	} else {
		snap.Warnings = append(snap.Warnings, core.Warning{
			Code:    core.WarnBenchmarkInsufficient,
			Message: "benchmark too short, relative strength omitted",
		})
	}

	snap.Indicators = set
	return snap, nil
}
