package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 4.0, SMA(closes, 3), 1e-9)
	assert.InDelta(t, 3.0, SMA(closes, 5), 1e-9)
	assert.True(t, math.IsNaN(SMA(closes, 6)), "short input must be undefined")
	assert.True(t, math.IsNaN(SMA(closes, 0)))
}

func TestEMA(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}

	// Seed SMA(10,11,12) = 11, k = 0.5: 13*0.5+11*0.5 = 12, 14*0.5+12*0.5 = 13.
	assert.InDelta(t, 13.0, EMA(closes, 3), 1e-9)
	assert.True(t, math.IsNaN(EMA(closes, 6)))
}

func TestRSI(t *testing.T) {
	up := []float64{100, 101, 102, 103, 104, 105}
	down := []float64{105, 104, 103, 102, 101, 100}

	assert.InDelta(t, 100.0, RSI(up, 5), 1e-9, "all gains pin RSI at 100")
	assert.InDelta(t, 0.0, RSI(down, 5), 1e-9, "all losses pin RSI at 0")

	// Equal gains and losses balance to 50.
	mixed := []float64{100, 102, 100, 102, 100, 102, 100}
	assert.InDelta(t, 50.0, RSI(mixed, 6), 1e-9)

	assert.True(t, math.IsNaN(RSI(up, 6)), "needs period+1 closes")
}

func TestMACDInsufficientHistory(t *testing.T) {
	closes := make([]float64, 34)
	line, signal, hist := MACD(closes)
	assert.True(t, math.IsNaN(line))
	assert.True(t, math.IsNaN(signal))
	assert.True(t, math.IsNaN(hist))
}

func TestMACDFlatSeriesIsZero(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	line, signal, hist := MACD(closes)
	assert.InDelta(t, 0.0, line, 1e-9)
	assert.InDelta(t, 0.0, signal, 1e-9)
	assert.InDelta(t, 0.0, hist, 1e-9)
}

func TestEMASeriesPerIndex(t *testing.T) {
	vals := []float64{10, 12, 14, 16, 18, 20}
	s := emaSeries(vals, 4)

	assert.True(t, math.IsNaN(s[0]))
	assert.True(t, math.IsNaN(s[2]))
	// Seed SMA(10,12,14,16) = 13, k = 0.4: 18*0.4+13*0.6 = 13.2+7.8 = 15.
	assert.InDelta(t, 13.0, s[3], 1e-9)
	assert.InDelta(t, 15.0, s[4], 1e-9)
	assert.InDelta(t, 17.0, s[5], 1e-9)
	// The scalar EMA is the last series entry.
	assert.InDelta(t, s[5], EMA(vals, 4), 1e-9)
}

func TestMACDSignalSpansFullHistory(t *testing.T) {
	// Forty flat bars then a twenty-bar ramp: the signal line must remember
	// the flat era, not just the most recent MACD samples.
	closes := make([]float64, 0, 60)
	for i := 0; i < 40; i++ {
		closes = append(closes, 100)
	}
	c := 100.0
	for i := 0; i < 20; i++ {
		c += 2
		closes = append(closes, c)
	}

	line, signal, hist := MACD(closes)

	// Textbook reference with plain recurrences.
	ref := func(vals []float64, n int) []float64 {
		out := make([]float64, len(vals))
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[i]
			out[i] = math.NaN()
		}
		out[n-1] = sum / float64(n)
		k := 2.0 / float64(n+1)
		for i := n; i < len(vals); i++ {
			out[i] = vals[i]*k + out[i-1]*(1-k)
		}
		return out
	}
	fastE := ref(closes, 12)
	slowE := ref(closes, 26)
	var lines []float64
	for i := 25; i < len(closes); i++ {
		lines = append(lines, fastE[i]-slowE[i])
	}
	sig := ref(lines, 9)

	assert.InDelta(t, lines[len(lines)-1], line, 1e-9)
	assert.InDelta(t, sig[len(sig)-1], signal, 1e-9)
	assert.InDelta(t, line-signal, hist, 1e-9)
	// Rising momentum: fast EMA leads, the signal lags below the line.
	assert.Greater(t, line, signal)
	assert.Greater(t, hist, 0.0)
}

func TestATRLatestValue(t *testing.T) {
	highs := []float64{10, 11, 14}
	lows := []float64{8, 9, 10}
	closes := []float64{9, 10, 12}

	// TRs over the last 2 bars: max(2,|11-9|,|9-9|)=2 and max(4,|14-10|,|10-10|)=4.
	assert.InDelta(t, 3.0, ATR(highs, lows, closes, 2), 1e-9)
	assert.True(t, math.IsNaN(ATR(highs, lows, closes, 3)), "needs period+1 bars")
}
