package indicator

import (
	"math"

	"github.com/newthinker/quant/internal/core"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(cur, prev core.Bar) float64 {
	return math.Max(cur.High-cur.Low,
		math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
}

// ATR calculates the Average True Range with Wilder's smoothing. The
// first value is the mean of the first period true ranges, which start
// at the second bar.
// Returns slice of length: len(bars) - period
func ATR(bars []core.Bar, period int) []float64 {
	if period <= 0 || len(bars) < period+1 {
		return []float64{}
	}

	result := make([]float64, 0, len(bars)-period)

	var sum float64
	for i := 1; i <= period; i++ {
		sum += TrueRange(bars[i], bars[i-1])
	}
	atr := sum / float64(period)
	result = append(result, atr)

	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + TrueRange(bars[i], bars[i-1])) / float64(period)
		result = append(result, atr)
	}

	return result
}
