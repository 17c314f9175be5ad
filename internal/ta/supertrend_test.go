package ta

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trend-signal-bot/internal/types"
)

// trendBars produces bars whose close moves by step per bar with a fixed
// 2-point daily range around the close.
func trendBars(n int, start, step float64) []types.Bar {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	c := start
	for i := range bars {
		bars[i] = types.Bar{
			Date:  day.AddDate(0, 0, i),
			Open:  c - step/2,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
		c += step
	}
	return bars
}

func TestSupertrendWarmup(t *testing.T) {
	bars := trendBars(30, 100, 2)
	points := Supertrend(bars, 10, 3)

	require.Len(t, points, len(bars))
	for i := 0; i <= 10-1; i++ {
		assert.False(t, points[i].Defined(), "index %d should be undefined", i)
		assert.True(t, math.IsNaN(points[i].Value))
	}
	// First defined bar seeds bearish with the upper band active.
	assert.Equal(t, types.DirBearish, points[10].Direction)
	assert.InDelta(t, points[10].FinalUpper, points[10].Value, 1e-9)
}

func TestSupertrendDirectionAlwaysDefined(t *testing.T) {
	bars := trendBars(60, 100, 2)
	points := Supertrend(bars, 10, 3)

	for i := 10; i < len(points); i++ {
		p := points[i]
		require.True(t, p.Direction == types.DirBullish || p.Direction == types.DirBearish,
			"index %d has direction %d", i, p.Direction)
		if p.Direction == types.DirBullish {
			assert.InDelta(t, p.FinalLower, p.Value, 1e-9, "bullish value must be the lower band at %d", i)
		} else {
			assert.InDelta(t, p.FinalUpper, p.Value, 1e-9, "bearish value must be the upper band at %d", i)
		}
	}
}

func TestSupertrendUptrendFlipsBullishAndRatchets(t *testing.T) {
	// Strictly increasing closes: the trend must flip bullish after warmup
	// and the active lower band must never decrease while it holds.
	bars := trendBars(40, 100, 2)
	points := Supertrend(bars, 10, 3)

	last := points[len(points)-1]
	require.Equal(t, types.DirBullish, last.Direction)

	flipped := false
	var prevLower float64
	for i := 10; i < len(points); i++ {
		p := points[i]
		if !flipped {
			if p.Direction == types.DirBullish {
				flipped = true
				prevLower = p.FinalLower
			}
			continue
		}
		require.Equal(t, types.DirBullish, p.Direction,
			"uptrend must not flip back at index %d", i)
		assert.GreaterOrEqual(t, p.FinalLower, prevLower,
			"support band regressed at index %d", i)
		prevLower = p.FinalLower
	}
	require.True(t, flipped, "uptrend never flipped bullish")
}

func TestSupertrendCrashFlipsBearish(t *testing.T) {
	bars := trendBars(40, 100, 2)
	// Collapse well below any plausible support band.
	crash := bars[len(bars)-1]
	crash.Date = crash.Date.AddDate(0, 0, 1)
	crash.Open = crash.Close
	crash.Close = crash.Close - 60
	crash.High = crash.Open + 1
	crash.Low = crash.Close - 1
	bars = append(bars, crash)

	points := Supertrend(bars, 10, 3)
	last := points[len(points)-1]

	assert.Equal(t, types.DirBearish, last.Direction)
	assert.InDelta(t, last.FinalUpper, last.Value, 1e-9)
}

func TestSupertrendInsufficientHistory(t *testing.T) {
	bars := trendBars(5, 100, 2)
	points := Supertrend(bars, 14, 3)

	require.Len(t, points, 5)
	for i, p := range points {
		assert.False(t, p.Defined(), "index %d should be undefined", i)
	}
}

func TestLatestSupertrend(t *testing.T) {
	bars := trendBars(30, 100, 2)
	points := Supertrend(bars, 10, 3)

	last := LatestSupertrend(points)
	assert.True(t, last.Defined())
	assert.Equal(t, points[len(points)-1], last)

	undefined := LatestSupertrend(Supertrend(trendBars(5, 100, 2), 10, 3))
	assert.False(t, undefined.Defined())
}
