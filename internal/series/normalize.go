package series

import (
	"fmt"

	"github.com/newthinker/quant/internal/core"
)

// Ascending returns bars ordered oldest to newest. Providers that answer
// newest-first get a reversed copy; ascending input is returned as is.
func Ascending(bars []core.Bar) []core.Bar {
	if len(bars) < 2 || !bars[0].Time.After(bars[len(bars)-1].Time) {
		return bars
	}
	out := make([]core.Bar, len(bars))
	for i, b := range bars {
		out[len(bars)-1-i] = b
	}
	return out
}

// Validate enforces the series invariant: non-decreasing timestamps and
// at most one bar per calendar date for daily data.
func Validate(bars []core.Bar, daily bool) error {
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Time, bars[i].Time
		if cur.Before(prev) {
			return core.WrapError(core.ErrInvalidInput,
				fmt.Errorf("bar %d at %s precedes %s", i, cur.Format("2006-01-02"), prev.Format("2006-01-02")))
		}
		if daily {
			py, pm, pd := prev.Date()
			cy, cm, cd := cur.Date()
			if py == cy && pm == cm && pd == cd {
				return core.WrapError(core.ErrInvalidInput,
					fmt.Errorf("duplicate bar for %s", cur.Format("2006-01-02")))
			}
		} else if cur.Equal(prev) {
			return core.WrapError(core.ErrInvalidInput,
				fmt.Errorf("duplicate bar at %s", cur.Format("2006-01-02 15:04")))
		}
	}
	return nil
}
