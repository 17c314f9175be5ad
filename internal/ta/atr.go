package ta

import (
	"math"

	"trend-signal-bot/internal/types"
)

// ATRSeries computes the rolling-mean Average True Range for every bar.
//
// Entry i is the mean of True Range over bars [i-period+1, i]; entries below
// index period-1 are NaN. True Range at index 0 degenerates to high-low
// because there is no previous close. Pure function of its input.
func ATRSeries(bars []types.Bar, period int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(bars) < period {
		return out
	}

	trs := make([]float64, len(bars))
	trs[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		trs[i] = trueRange(bars[i].High, bars[i].Low, bars[i-1].Close)
	}

	sum := 0.0
	for i, tr := range trs {
		sum += tr
		if i >= period {
			sum -= trs[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}
