package ta

import "trend-signal-bot/internal/types"

// ResampleWeekly aggregates daily bars into ISO-calendar-week bars: first
// open, max high, min low, last close, summed volume. The weekly bar carries
// the date of the week's first trading day. Weeks with no trading days are
// simply absent. Input must be ordered by date ascending.
func ResampleWeekly(daily []types.Bar) []types.Bar {
	if len(daily) == 0 {
		return nil
	}

	type weekKey struct {
		year int
		week int
	}

	var out []types.Bar
	var current weekKey
	started := false

	for _, b := range daily {
		y, w := b.Date.ISOWeek()
		k := weekKey{y, w}

		if !started || k != current {
			out = append(out, b)
			current = k
			started = true
			continue
		}

		last := &out[len(out)-1]
		if b.High > last.High {
			last.High = b.High
		}
		if b.Low < last.Low {
			last.Low = b.Low
		}
		last.Close = b.Close
		last.Volume += b.Volume
	}

	return out
}
