package indicator

import "github.com/newthinker/quant/internal/core"

// Pivots are standard floor-trader support and resistance levels.
type Pivots struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	S1    float64 `json:"s1"`
	R2    float64 `json:"r2"`
	S2    float64 `json:"s2"`
}

// StandardPivots derives levels from the prior period's high, low and close.
func StandardPivots(prior core.Bar) Pivots {
	p := (prior.High + prior.Low + prior.Close) / 3
	r := prior.High - prior.Low
	return Pivots{
		Pivot: p,
		R1:    2*p - prior.Low,
		S1:    2*p - prior.High,
		R2:    p + r,
		S2:    p - r,
	}
}
