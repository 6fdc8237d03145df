package risk

import (
	"sort"

	"github.com/newthinker/quant/internal/core"
)

// Holding is one line of the concentration report.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Concentration describes how the portfolio value is spread.
type Concentration struct {
	TopHoldings       []Holding `json:"top_holdings"`
	HerfindahlIndex   float64   `json:"herfindahl_index"`
	MaxPositionWeight float64   `json:"max_position_weight"`
}

// Weights returns market value over total value per non-cash ticker,
// heaviest first. Ties are broken by ticker so the order is stable.
func Weights(positions []core.Position, totalValue float64) []Holding {
	byTicker := make(map[string]float64)
	var order []string
	for _, pos := range positions {
		if pos.IsCash() {
			continue
		}
		if _, seen := byTicker[pos.Ticker]; !seen {
			order = append(order, pos.Ticker)
		}
		byTicker[pos.Ticker] += pos.MarketValue / totalValue
	}

	weights := make([]Holding, 0, len(order))
	for _, t := range order {
		weights = append(weights, Holding{Ticker: t, Weight: byTicker[t]})
	}
	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].Ticker < weights[j].Ticker
	})
	return weights
}

// CalculateConcentration computes the top holdings, the Herfindahl index
// and the largest weight. An empty or cash-only portfolio is an error.
func CalculateConcentration(positions []core.Position, totalValue float64, top int) (Concentration, error) {
	if totalValue <= 0 {
		return Concentration{}, core.WrapError(core.ErrInvalidInput, errTotalValue(totalValue))
	}

	weights := Weights(positions, totalValue)
	if len(weights) == 0 {
		return Concentration{}, core.ErrNoPositions
	}

	var hhi float64
	for _, w := range weights {
		hhi += w.Weight * w.Weight
	}

	if top > len(weights) {
		top = len(weights)
	}
	topHoldings := make([]Holding, top)
	copy(topHoldings, weights[:top])

	return Concentration{
		TopHoldings:       topHoldings,
		HerfindahlIndex:   hhi,
		MaxPositionWeight: weights[0].Weight,
	}, nil
}
