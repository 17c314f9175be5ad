package signal

import (
	"math"

	"trend-signal-bot/internal/types"
)

// DefaultVolumeSpikeMult is the canonical volume-spike threshold: current
// volume above 1.5x the 20-day average.
const DefaultVolumeSpikeMult = 1.5

// Inputs are the latest indicator values a score is derived from. Undefined
// values (NaN, or zero for moving averages) contribute nothing.
type Inputs struct {
	Price  float64
	SMA50  float64
	SMA100 float64
	SMA200 float64
	EMA50  float64
	RSI14  float64

	SupertrendDirection int

	Volume          float64
	AvgVolume       float64
	VolumeSpikeMult float64 // 0 means DefaultVolumeSpikeMult
}

// Score combines the weighted indicator contributions into a single integer:
//
//	price vs SMA200  ±2    price vs SMA100  ±1    price vs EMA50  ±1
//	Supertrend dir   ±2    RSI <30 / >70    ±2    SMA50/200 cross ±2
//	volume spike     +1
//
// RSI exactly at 30 or 70 is neither oversold nor overbought. The cross
// contribution needs both SMA50 and SMA200 defined.
func Score(in Inputs) int {
	score := 0

	score += compare(in.Price, in.SMA200, 2)
	score += compare(in.Price, in.SMA100, 1)
	score += compare(in.Price, in.EMA50, 1)

	switch in.SupertrendDirection {
	case types.DirBullish:
		score += 2
	case types.DirBearish:
		score -= 2
	}

	if defined(in.RSI14) {
		if in.RSI14 < 30 {
			score += 2
		} else if in.RSI14 > 70 {
			score -= 2
		}
	}

	if defined(in.SMA50) && defined(in.SMA200) {
		if in.SMA50 > in.SMA200 {
			score += 2
		} else if in.SMA50 < in.SMA200 {
			score -= 2
		}
	}

	mult := in.VolumeSpikeMult
	if mult <= 0 {
		mult = DefaultVolumeSpikeMult
	}
	if defined(in.AvgVolume) && in.Volume > mult*in.AvgVolume {
		score++
	}

	return score
}

// Label maps a score to its categorical signal.
func Label(score int) string {
	switch {
	case score >= 5:
		return types.SignalStrongBuy
	case score >= 2:
		return types.SignalBuy
	case score <= -5:
		return types.SignalStrongSell
	case score <= -2:
		return types.SignalSell
	default:
		return types.SignalNeutral
	}
}

// compare scores price against a moving average: +weight above, -weight
// below, nothing when the average is undefined or price sits exactly on it.
func compare(price, ma float64, weight int) int {
	if !defined(ma) || math.IsNaN(price) {
		return 0
	}
	if price > ma {
		return weight
	}
	if price < ma {
		return -weight
	}
	return 0
}

func defined(v float64) bool {
	return !math.IsNaN(v) && v > 0
}
