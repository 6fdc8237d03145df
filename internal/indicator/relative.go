package indicator

import (
	"math"

	"github.com/newthinker/quant/internal/series"
	"gonum.org/v1/gonum/stat"
)

// Market comparison outcomes.
const (
	Outperform   = "outperform"
	Underperform = "underperform"
)

// RelativeStrength compares an instrument with its benchmark over their
// common most-recent window.
type RelativeStrength struct {
	Correlation     float64 `json:"correlation"`
	Return          float64 `json:"return"`
	BenchmarkReturn float64 `json:"benchmark_return"`
	Excess          float64 `json:"excess_return"`
	VsMarket        string  `json:"vs_market"`
	Points          int     `json:"points"`
}

// SimpleReturns returns r[i] = p[i+1]/p[i] - 1. A non-positive base
// yields a zero return so both series keep their positions.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			out[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return out
}

// CompareWithBenchmark aligns the two close series, correlates their daily
// returns and compares cumulative returns. It reports false when fewer
// than minPoints aligned returns exist.
func CompareWithBenchmark(closes, benchmark []float64, minPoints int) (*RelativeStrength, bool) {
	a, b := series.AlignPair(closes, benchmark)
	ra, rb := SimpleReturns(a), SimpleReturns(b)
	if len(ra) < minPoints || len(ra) == 0 {
		return nil, false
	}

	corr := stat.Correlation(ra, rb, nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		corr = 0
	}

	instrument := cumulative(a)
	market := cumulative(b)

	rs := &RelativeStrength{
		Correlation:     corr,
		Return:          instrument,
		BenchmarkReturn: market,
		Excess:          instrument - market,
		VsMarket:        Underperform,
		Points:          len(ra),
	}
	if instrument > market {
		rs.VsMarket = Outperform
	}
	return rs, true
}

func cumulative(prices []float64) float64 {
	first := prices[0]
	if first <= 0 {
		return 0
	}
	return prices[len(prices)-1]/first - 1
}
