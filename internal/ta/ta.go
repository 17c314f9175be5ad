package ta

import "math"

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// EMA seeds with an SMA over the first n values, then applies the standard
// smoothing factor 2/(n+1) across the remainder.
func EMA(closes []float64, n int) float64 {
	s := emaSeries(closes, n)
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// emaSeries is the n-period EMA at every index, NaN below index n-1.
func emaSeries(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		out[i] = math.NaN()
	}
	if n <= 0 || len(vals) < n {
		return out
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += vals[i]
	}
	ema := sum / float64(n)
	out[n-1] = ema
	k := 2.0 / float64(n+1)
	for i := n; i < len(vals); i++ {
		ema = vals[i]*k + ema*(1-k)
		out[i] = ema
	}
	return out
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// MACD returns the 12/26 EMA difference, its 9-period signal line and the
// histogram (line minus signal). The signal EMA runs across every MACD
// sample since the slow EMA first exists. NaN across the board with under
// 35 closes.
func MACD(closes []float64) (line, signal, hist float64) {
	const fast, slow, smooth = 12, 26, 9
	if len(closes) < slow+smooth {
		return math.NaN(), math.NaN(), math.NaN()
	}

	fastE := emaSeries(closes, fast)
	slowE := emaSeries(closes, slow)
	lines := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		lines = append(lines, fastE[i]-slowE[i])
	}

	sig := emaSeries(lines, smooth)
	line = lines[len(lines)-1]
	signal = sig[len(sig)-1]
	hist = line - signal
	return line, signal, hist
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// AvgVolume is the simple mean of the trailing n volumes.
func AvgVolume(volumes []float64, n int) float64 {
	return SMA(volumes, n)
}

// ATR is the rolling-mean Average True Range over the trailing period bars,
// as a single latest value. See ATRSeries for the per-bar series.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	n := period
	if len(closes) < n+1 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += trueRange(highs[i], lows[i], closes[i-1])
	}
	return sum / float64(n)
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if v := math.Abs(high - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(low - prevClose); v > tr {
		tr = v
	}
	return tr
}
