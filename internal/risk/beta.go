package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultBeta is used whenever beta cannot be estimated.
const DefaultBeta = 1.0

// Beta estimates cov(p, b)/var(b) with population moments. Both series
// must already be aligned. Zero or undefined variance, or a non-finite
// result, falls back to DefaultBeta.
func Beta(portfolio, benchmark []float64) float64 {
	n := len(benchmark)
	if n < 2 || len(portfolio) != n {
		return DefaultBeta
	}

	_, variance := stat.PopMeanVariance(benchmark, nil)
	if variance == 0 || math.IsNaN(variance) {
		return DefaultBeta
	}

	// stat.Covariance is the sample estimator
	cov := stat.Covariance(portfolio, benchmark, nil) * float64(n-1) / float64(n)

	beta := cov / variance
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return DefaultBeta
	}
	return beta
}
