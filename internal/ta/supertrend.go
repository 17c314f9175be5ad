package ta

import (
	"math"

	"trend-signal-bot/internal/types"
)

// supertrendState is the recurrence state carried from bar to bar.
type supertrendState struct {
	finalUpper float64
	finalLower float64
	direction  int
}

// Supertrend computes the ATR-based trailing stop-and-reverse line for a
// daily or weekly bar series.
//
// Bands ratchet: the final upper band only moves down while price holds
// below it, the final lower band only moves up while price holds above it;
// a band resets to its basic value when price closes through the opposite
// band (a trend flip). Points below index period are undefined (Direction
// DirNone, NaN values) because ATR needs a full window plus a previous
// close.
func Supertrend(bars []types.Bar, period int, multiplier float64) []types.SupertrendPoint {
	out := make([]types.SupertrendPoint, len(bars))
	for i := range out {
		out[i] = undefinedPoint()
	}
	if period <= 0 || multiplier <= 0 || len(bars) <= period {
		return out
	}

	atr := ATRSeries(bars, period)
	var st supertrendState

	for i := period; i < len(bars); i++ {
		if math.IsNaN(atr[i]) {
			// Absent ATR propagates as an absent point; the recurrence
			// restarts at the next defined index.
			st = supertrendState{}
			continue
		}

		mid := (bars[i].High + bars[i].Low) / 2
		basicUpper := mid + multiplier*atr[i]
		basicLower := mid - multiplier*atr[i]

		p := types.SupertrendPoint{BasicUpper: basicUpper, BasicLower: basicLower}

		if st.direction == types.DirNone {
			// First defined bar: seed the bands and start bearish with the
			// upper band as the active line.
			p.FinalUpper = basicUpper
			p.FinalLower = basicLower
			p.Direction = types.DirBearish
			p.Value = p.FinalUpper
		} else {
			prevClose := bars[i-1].Close

			if basicUpper < st.finalUpper || prevClose > st.finalUpper {
				p.FinalUpper = basicUpper
			} else {
				p.FinalUpper = st.finalUpper
			}
			if basicLower > st.finalLower || prevClose < st.finalLower {
				p.FinalLower = basicLower
			} else {
				p.FinalLower = st.finalLower
			}

			close := bars[i].Close
			if st.direction == types.DirBullish {
				if close <= p.FinalLower {
					p.Direction = types.DirBearish
					p.Value = p.FinalUpper
				} else {
					p.Direction = types.DirBullish
					p.Value = p.FinalLower
				}
			} else {
				if close >= p.FinalUpper {
					p.Direction = types.DirBullish
					p.Value = p.FinalLower
				} else {
					p.Direction = types.DirBearish
					p.Value = p.FinalUpper
				}
			}
		}

		out[i] = p
		st = supertrendState{finalUpper: p.FinalUpper, finalLower: p.FinalLower, direction: p.Direction}
	}

	return out
}

// LatestSupertrend returns the last defined point of the series, or an
// undefined point when the series never warms up.
func LatestSupertrend(points []types.SupertrendPoint) types.SupertrendPoint {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Defined() {
			return points[i]
		}
	}
	return undefinedPoint()
}

func undefinedPoint() types.SupertrendPoint {
	nan := math.NaN()
	return types.SupertrendPoint{
		BasicUpper: nan,
		BasicLower: nan,
		FinalUpper: nan,
		FinalLower: nan,
		Value:      nan,
		Direction:  types.DirNone,
	}
}
