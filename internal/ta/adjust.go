package ta

import (
	"time"

	"trend-signal-bot/internal/types"
)

// AdjustForAction retroactively rescales bars for a split or bonus: price
// fields of every bar strictly before the ex-date are divided by the ratio
// and volume is multiplied, so the series is continuous across the action.
// Bars on or after the ex-date already trade at the new face value and are
// left untouched. A ratio of 1 or less is ignored, as is an ex-date beyond
// the series: until the market reprices on the ex-date, every bar still
// trades at the old face value and rescaling would corrupt them all.
func AdjustForAction(bars []types.Bar, exDate time.Time, ratio float64) []types.Bar {
	out := make([]types.Bar, len(bars))
	copy(out, bars)
	if ratio <= 1 || len(bars) == 0 {
		return out
	}
	if exDate.After(bars[len(bars)-1].Date) {
		return out
	}

	for i := range out {
		if !out[i].Date.Before(exDate) {
			continue
		}
		out[i].Open /= ratio
		out[i].High /= ratio
		out[i].Low /= ratio
		out[i].Close /= ratio
		out[i].Volume *= ratio
	}
	return out
}
