package series

import "github.com/newthinker/quant/internal/core"

// Aligned holds close prices truncated to a common length, ascending.
type Aligned struct {
	Length int
	Closes map[string][]float64
}

// MinLength returns the shortest series length, or 0 for no series.
func MinLength(series map[string][]core.Bar) int {
	first := true
	minLen := 0
	for _, bars := range series {
		if first || len(bars) < minLen {
			minLen = len(bars)
			first = false
		}
	}
	return minLen
}

// Align keeps the most recent N bars of every series, N being the
// shortest length, and returns their closes as parallel arrays.
func Align(series map[string][]core.Bar) Aligned {
	n := MinLength(series)
	out := Aligned{
		Length: n,
		Closes: make(map[string][]float64, len(series)),
	}
	for name, bars := range series {
		out.Closes[name] = core.Closes(bars[len(bars)-n:])
	}
	return out
}

// Tail returns the last n values of xs. It returns xs unchanged when n
// is at least its length.
func Tail(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	if n <= 0 {
		return []float64{}
	}
	return xs[len(xs)-n:]
}

// AlignPair trims two arrays to their common most-recent length.
func AlignPair(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return Tail(a, n), Tail(b, n)
}
