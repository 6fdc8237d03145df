package series

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/quant/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(n int, start float64) []core.Bar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		c := start + float64(i)
		bars[i] = core.Bar{Time: t0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return bars
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 200, p.MinIndicatorBars)
	assert.Equal(t, 30, p.MinRiskBars)
	assert.Equal(t, 30, p.MinReturns)
	assert.Equal(t, 30, p.MinBenchmarkPoints)
}

func TestPolicy_RequireBars(t *testing.T) {
	p := DefaultPolicy()

	t.Run("no data", func(t *testing.T) {
		err := p.RequireBars("AAPL", 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrNoData))
		assert.False(t, errors.Is(err, core.ErrInsufficientData))
	})

	t.Run("shortfall", func(t *testing.T) {
		err := p.RequireBars("AAPL", 50)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInsufficientData))
		assert.Contains(t, err.Error(), "need ≥200, got 50")

		var shortfall *ShortfallError
		require.True(t, errors.As(err, &shortfall))
		assert.Equal(t, 200, shortfall.Required)
		assert.Equal(t, 50, shortfall.Actual)
	})

	t.Run("enough", func(t *testing.T) {
		assert.NoError(t, p.RequireBars("AAPL", 200))
	})
}

func TestPolicy_RiskThresholds(t *testing.T) {
	p := DefaultPolicy()

	assert.NoError(t, p.RequireAligned(30))
	assert.True(t, errors.Is(p.RequireAligned(29), core.ErrInsufficientData))
	assert.NoError(t, p.RequireReturns(30))
	assert.True(t, errors.Is(p.RequireReturns(10), core.ErrInsufficientData))
	assert.True(t, p.BenchmarkUsable(30))
	assert.False(t, p.BenchmarkUsable(29))
}

func TestMissing_SortsTickers(t *testing.T) {
	err := Missing([]string{"TSLA", "AAPL"})

	assert.True(t, errors.Is(err, core.ErrMissingSeries))
	var missing *MissingSeriesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"AAPL", "TSLA"}, missing.Tickers)
	assert.Contains(t, err.Error(), "AAPL, TSLA")
}

func TestAlign_KeepsMostRecent(t *testing.T) {
	aligned := Align(map[string][]core.Bar{
		"AAPL": makeBars(50, 100),
		"MSFT": makeBars(40, 200),
	})

	assert.Equal(t, 40, aligned.Length)
	require.Len(t, aligned.Closes["AAPL"], 40)
	require.Len(t, aligned.Closes["MSFT"], 40)
	// AAPL drops its 10 oldest bars
	assert.Equal(t, 110.0, aligned.Closes["AAPL"][0])
	assert.Equal(t, 149.0, aligned.Closes["AAPL"][39])
	assert.Equal(t, 200.0, aligned.Closes["MSFT"][0])
}

func TestAlign_Empty(t *testing.T) {
	aligned := Align(nil)
	assert.Equal(t, 0, aligned.Length)
	assert.Empty(t, aligned.Closes)
}

func TestTailAndAlignPair(t *testing.T) {
	assert.Equal(t, []float64{3, 4}, Tail([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1, 2}, Tail([]float64{1, 2}, 5))
	assert.Empty(t, Tail([]float64{1, 2}, 0))

	a, b := AlignPair([]float64{1, 2, 3, 4}, []float64{9, 8})
	assert.Equal(t, []float64{3, 4}, a)
	assert.Equal(t, []float64{9, 8}, b)
}

func TestAscending(t *testing.T) {
	bars := makeBars(5, 10)

	assert.Equal(t, bars, Ascending(bars))

	reversed := make([]core.Bar, len(bars))
	for i := range bars {
		reversed[len(bars)-1-i] = bars[i]
	}
	got := Ascending(reversed)
	assert.Equal(t, bars, got)
	// input is not mutated
	assert.Equal(t, 14.0, reversed[0].Close)
}

func TestValidate(t *testing.T) {
	bars := makeBars(5, 10)
	assert.NoError(t, Validate(bars, true))

	dup := append([]core.Bar(nil), bars...)
	dup[2].Time = dup[1].Time.Add(time.Hour)
	err := Validate(dup, true)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
	assert.NoError(t, Validate(dup, false))

	unordered := append([]core.Bar(nil), bars...)
	unordered[1], unordered[2] = unordered[2], unordered[1]
	assert.True(t, errors.Is(Validate(unordered, false), core.ErrInvalidInput))
}
