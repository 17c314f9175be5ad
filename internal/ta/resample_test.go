package ta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trend-signal-bot/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResampleWeekly(t *testing.T) {
	daily := []types.Bar{
		// Week 1: Mon + Wed (Tue is a holiday).
		{Date: day(2024, 1, 1), Open: 100, High: 105, Low: 99, Close: 102, Volume: 10},
		{Date: day(2024, 1, 3), Open: 102, High: 110, Low: 101, Close: 108, Volume: 20},
		// Week 2: single trading day.
		{Date: day(2024, 1, 8), Open: 108, High: 109, Low: 103, Close: 104, Volume: 15},
		// Week 3 has no trading days; week 4 resumes.
		{Date: day(2024, 1, 22), Open: 104, High: 112, Low: 104, Close: 111, Volume: 30},
		{Date: day(2024, 1, 23), Open: 111, High: 115, Low: 110, Close: 114, Volume: 25},
	}

	weekly := ResampleWeekly(daily)
	require.Len(t, weekly, 3, "empty weeks must be dropped, not zero-filled")

	assert.Equal(t, day(2024, 1, 1), weekly[0].Date)
	assert.Equal(t, 100.0, weekly[0].Open)
	assert.Equal(t, 110.0, weekly[0].High)
	assert.Equal(t, 99.0, weekly[0].Low)
	assert.Equal(t, 108.0, weekly[0].Close)
	assert.Equal(t, 30.0, weekly[0].Volume)

	assert.Equal(t, day(2024, 1, 8), weekly[1].Date)
	assert.Equal(t, 104.0, weekly[1].Close)

	assert.Equal(t, day(2024, 1, 22), weekly[2].Date)
	assert.Equal(t, 115.0, weekly[2].High)
	assert.Equal(t, 55.0, weekly[2].Volume)
}

func TestResampleWeeklyEmpty(t *testing.T) {
	assert.Nil(t, ResampleWeekly(nil))
}

func TestAdjustForAction(t *testing.T) {
	bars := []types.Bar{
		{Date: day(2024, 1, 1), Open: 500, High: 510, Low: 495, Close: 505, Volume: 100},
		{Date: day(2024, 1, 2), Open: 505, High: 515, Low: 500, Close: 510, Volume: 100},
		{Date: day(2024, 1, 3), Open: 102, High: 104, Low: 100, Close: 103, Volume: 480},
	}

	// 5:1 split effective on Jan 3.
	out := AdjustForAction(bars, day(2024, 1, 3), 5)

	assert.InDelta(t, 100.0, out[0].Open, 1e-9)
	assert.InDelta(t, 103.0, out[1].High, 1e-9)
	assert.InDelta(t, 500.0, out[0].Volume, 1e-9)
	// Bars on/after the ex-date already trade at the new face value.
	assert.Equal(t, bars[2], out[2])
	// Input is never mutated.
	assert.Equal(t, 500.0, bars[0].Open)
}

func TestAdjustForActionIgnoresFutureExDate(t *testing.T) {
	bars := []types.Bar{
		{Date: day(2024, 1, 1), Open: 505, High: 515, Low: 500, Close: 510, Volume: 100},
		{Date: day(2024, 1, 2), Open: 510, High: 512, Low: 505, Close: 510, Volume: 100},
	}

	// Announced 5:1 split whose ex-date has not arrived: the market still
	// trades at the old face value, so nothing may be rescaled.
	out := AdjustForAction(bars, day(2024, 1, 10), 5)

	assert.Equal(t, bars, out)
	assert.Equal(t, 510.0, out[1].Close)
}

func TestAdjustForActionIgnoresUnitRatio(t *testing.T) {
	bars := []types.Bar{
		{Date: day(2024, 1, 1), Open: 100, High: 101, Low: 99, Close: 100, Volume: 10},
	}
	out := AdjustForAction(bars, day(2024, 1, 2), 1)
	assert.Equal(t, bars[0], out[0])
}
