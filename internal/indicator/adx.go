package indicator

import (
	"math"

	"github.com/newthinker/quant/internal/core"
)

// DMI is the directional movement snapshot at the last bar.
type DMI struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// ADX computes Wilder's Average Directional Index. Directional movement
// and true range are Wilder-summed over period bars; DX values are then
// averaged for the seed and Wilder-smoothed afterwards. Needs 2*period bars.
func ADX(bars []core.Bar, period int) (DMI, bool) {
	if period <= 0 || len(bars) < 2*period {
		return DMI{}, false
	}

	p := float64(period)
	var trSum, plusSum, minusSum float64
	var dxSum, adx float64
	var out DMI
	dxCount := 0

	for i := 1; i < len(bars); i++ {
		cur, prev := bars[i], bars[i-1]
		tr := TrueRange(cur, prev)

		up := cur.High - prev.High
		down := prev.Low - cur.Low
		var plusDM, minusDM float64
		if up > down && up > 0 {
			plusDM = up
		}
		if down > up && down > 0 {
			minusDM = down
		}

		if i <= period {
			trSum += tr
			plusSum += plusDM
			minusSum += minusDM
			if i < period {
				continue
			}
		} else {
			trSum = trSum - trSum/p + tr
			plusSum = plusSum - plusSum/p + plusDM
			minusSum = minusSum - minusSum/p + minusDM
		}

		var plusDI, minusDI float64
		if trSum > 0 {
			plusDI = 100 * plusSum / trSum
			minusDI = 100 * minusSum / trSum
		}
		var dx float64
		if plusDI+minusDI > 0 {
			dx = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
		}

		dxCount++
		if dxCount <= period {
			dxSum += dx
			if dxCount == period {
				adx = dxSum / p
			}
		} else {
			adx = (adx*(p-1) + dx) / p
		}
		out.PlusDI, out.MinusDI = plusDI, minusDI
	}

	out.ADX = adx
	return out, true
}
