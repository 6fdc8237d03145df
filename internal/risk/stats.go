package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HistoricalVaR returns the return at index floor((1-confidence)*n) of the
// ascending sorted returns. For small n this may be the worst return.
// A non-negative percentile means no loss at that confidence and is
// reported as 0.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return math.Min(sorted[idx], 0)
}

// AnnualizedVolatility is the population standard deviation of period
// returns scaled by sqrt(periods per year).
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(returns, nil)
	return math.Sqrt(variance) * math.Sqrt(float64(periodsPerYear))
}

// MaxDrawdown finds the largest peak-to-trough decline of a value series
// as a fraction of the peak.
func MaxDrawdown(values []float64) float64 {
	var maxDD, peak float64

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// SharpeRatio computes annualized risk-adjusted return.
// Assumes risk-free rate of 0 for simplicity
func SharpeRatio(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean, stdDev := stat.MeanStdDev(returns, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	annualizedReturn := mean * float64(periodsPerYear)
	annualizedStdDev := stdDev * math.Sqrt(float64(periodsPerYear))

	return annualizedReturn / annualizedStdDev
}
