package indicator

import (
	"math"
	"time"

	"github.com/newthinker/quant/internal/core"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// trendBars builds n deterministic ascending bars: an uptrend with
// sinusoidal noise, so every indicator has non-degenerate input.
func trendBars(n int) []core.Bar {
	t0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		x := float64(i)
		c := 100 + 0.3*x + 3*math.Sin(x*0.7)
		o := c - 0.8*math.Cos(x*1.3)
		bars[i] = core.Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   o,
			High:   math.Max(o, c) + 1 + 0.5*math.Abs(math.Sin(x)),
			Low:    math.Min(o, c) - 1 - 0.5*math.Abs(math.Cos(x)),
			Close:  c,
			Volume: 1e6 + 2e5*math.Sin(x*1.1),
		}
	}
	return bars
}

func flatBars(n int, open, high, low, close float64) []core.Bar {
	t0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		bars[i] = core.Bar{Time: t0.AddDate(0, 0, i), Open: open, High: high, Low: low, Close: close, Volume: 1000}
	}
	return bars
}
