package indicator

import (
	"math"

	"github.com/newthinker/quant/internal/core"
)

// Signal is the directional reading of a candlestick pattern.
type Signal string

const (
	SignalNeutral Signal = "neutral"
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
)

// Pattern names.
const (
	PatternDoji             = "doji"
	PatternHammer           = "hammer"
	PatternBullishEngulfing = "bullish_engulfing"
	PatternBearishEngulfing = "bearish_engulfing"
)

// Detection thresholds, all relative to the bar's high-low range.
const (
	// dojiBodyRatio is the largest body a doji may have.
	dojiBodyRatio = 0.1
	// hammerBodyRatio is the largest body a hammer may have.
	hammerBodyRatio = 0.35
	// hammerLowerShadowRatio is the smallest lower shadow of a hammer.
	hammerLowerShadowRatio = 0.6
	// hammerUpperShadowRatio is the largest upper shadow of a hammer.
	hammerUpperShadowRatio = 0.15
)

// Pattern is one detected candlestick formation.
type Pattern struct {
	Name   string `json:"name"`
	Signal Signal `json:"signal"`
}

// DetectPatterns runs every detector on the last one or two bars. Several
// patterns may fire together; none firing yields an empty, non-nil slice.
func DetectPatterns(bars []core.Bar) []Pattern {
	patterns := []Pattern{}
	if len(bars) == 0 {
		return patterns
	}

	cur := bars[len(bars)-1]
	if isDoji(cur) {
		patterns = append(patterns, Pattern{Name: PatternDoji, Signal: SignalNeutral})
	}
	if isHammer(cur) {
		patterns = append(patterns, Pattern{Name: PatternHammer, Signal: SignalBullish})
	}

	if len(bars) < 2 {
		return patterns
	}
	prev := bars[len(bars)-2]
	if isBullishEngulfing(prev, cur) {
		patterns = append(patterns, Pattern{Name: PatternBullishEngulfing, Signal: SignalBullish})
	}
	if isBearishEngulfing(prev, cur) {
		patterns = append(patterns, Pattern{Name: PatternBearishEngulfing, Signal: SignalBearish})
	}

	return patterns
}

func body(b core.Bar) float64 {
	return math.Abs(b.Close - b.Open)
}

func lowerShadow(b core.Bar) float64 {
	return math.Min(b.Open, b.Close) - b.Low
}

func upperShadow(b core.Bar) float64 {
	return b.High - math.Max(b.Open, b.Close)
}

// isDoji: open and close within 10% of the range. A bar with no range at
// all is a doji only if it opened where it closed.
func isDoji(b core.Bar) bool {
	r := b.Range()
	if r <= 0 {
		return b.Open == b.Close
	}
	return body(b) <= dojiBodyRatio*r
}

func isHammer(b core.Bar) bool {
	r := b.Range()
	if r <= 0 {
		return false
	}
	bd := body(b)
	return bd <= hammerBodyRatio*r &&
		lowerShadow(b) >= hammerLowerShadowRatio*r &&
		lowerShadow(b) >= 2*bd &&
		upperShadow(b) <= hammerUpperShadowRatio*r
}

func isBullishEngulfing(prev, cur core.Bar) bool {
	return prev.Close < prev.Open &&
		cur.Close > cur.Open &&
		cur.Open <= prev.Close &&
		cur.Close >= prev.Open &&
		body(cur) > body(prev)
}

func isBearishEngulfing(prev, cur core.Bar) bool {
	return prev.Close > prev.Open &&
		cur.Close < cur.Open &&
		cur.Open >= prev.Close &&
		cur.Close <= prev.Open &&
		body(cur) > body(prev)
}
