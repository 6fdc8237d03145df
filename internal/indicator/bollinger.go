package indicator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Bands represents Bollinger Bands at the last bar.
type Bands struct {
	Upper     float64
	Middle    float64
	Lower     float64
	Bandwidth float64 // (upper-lower)/middle
	PercentB  float64 // (close-lower)/(upper-lower), 0.5 when bands collapse
}

// Bollinger computes bands over the trailing period closes using the
// population standard deviation.
func Bollinger(prices []float64, period int, k float64) (Bands, bool) {
	if period <= 0 || len(prices) < period {
		return Bands{}, false
	}

	window := prices[len(prices)-period:]
	mean, variance := stat.PopMeanVariance(window, nil)
	sd := math.Sqrt(variance)

	b := Bands{
		Upper:  mean + k*sd,
		Middle: mean,
		Lower:  mean - k*sd,
	}
	if mean != 0 {
		b.Bandwidth = (b.Upper - b.Lower) / mean
	}

	width := b.Upper - b.Lower
	if width == 0 {
		b.PercentB = 0.5
	} else {
		b.PercentB = (prices[len(prices)-1] - b.Lower) / width
	}

	return b, true
}
