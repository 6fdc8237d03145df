package indicator

import "github.com/newthinker/quant/internal/core"

// VWAP returns cumulative typical price times volume over cumulative
// volume across all bars. With no traded volume it falls back to the
// last bar's typical price.
func VWAP(bars []core.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}

	var pv, vol float64
	for _, b := range bars {
		pv += b.TypicalPrice() * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return bars[len(bars)-1].TypicalPrice()
	}
	return pv / vol
}

// OBV returns the On-Balance Volume series starting at zero on the first
// bar. Volume is added on an up close, subtracted on a down close and
// ignored on a tie.
func OBV(bars []core.Bar) []float64 {
	if len(bars) == 0 {
		return []float64{}
	}

	result := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		result[i] = result[i-1]
		switch {
		case bars[i].Close > bars[i-1].Close:
			result[i] += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			result[i] -= bars[i].Volume
		}
	}
	return result
}
