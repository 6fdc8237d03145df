package risk

import (
	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/series"
)

// ValueSeries returns value[i] = Σ close_i(ticker) × quantity over the
// aligned index.
func ValueSeries(aligned series.Aligned, holdings []core.Position) []float64 {
	values := make([]float64, aligned.Length)
	for _, pos := range holdings {
		closes := aligned.Closes[pos.Ticker]
		for i := range values {
			values[i] += closes[i] * pos.Quantity
		}
	}
	return values
}

// Returns computes simple period returns, skipping points whose prior
// value is not positive.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			continue
		}
		out = append(out, (values[i]-values[i-1])/values[i-1])
	}
	return out
}
