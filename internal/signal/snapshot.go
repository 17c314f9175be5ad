package signal

import (
	"fmt"
	"time"

	"trend-signal-bot/internal/ta"
	"trend-signal-bot/internal/types"
)

// SnapshotConfig carries the indicator windows for snapshot assembly.
type SnapshotConfig struct {
	RSIPeriod        int
	ATRPeriod        int
	AvgVolumeWindow  int
	VolumeSpikeMult  float64
	SupertrendPeriod int
	SupertrendMult   float64
	WeeklyPeriod     int
	WeeklyMult       float64
}

// DefaultSnapshotConfig mirrors the config-file defaults.
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		RSIPeriod:        14,
		ATRPeriod:        14,
		AvgVolumeWindow:  20,
		VolumeSpikeMult:  DefaultVolumeSpikeMult,
		SupertrendPeriod: 10,
		SupertrendMult:   3.0,
		WeeklyPeriod:     10,
		WeeklyMult:       3.0,
	}
}

// minBars is the history needed for the slowest indicator (SMA200).
const minBars = 200

// BuildSnapshot computes every indicator, the daily and weekly Supertrend
// and the composite score for one symbol's daily bars. Bars must be ordered
// by date ascending.
func BuildSnapshot(symbol string, bars []types.Bar, cfg SnapshotConfig) (types.TechnicalSnapshot, error) {
	if len(bars) < minBars {
		return types.TechnicalSnapshot{}, fmt.Errorf("insufficient history for %s: %d bars, need %d",
			symbol, len(bars), minBars)
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}
	latest := bars[len(bars)-1]

	daily := ta.LatestSupertrend(ta.Supertrend(bars, cfg.SupertrendPeriod, cfg.SupertrendMult))
	weekly := ta.LatestSupertrend(ta.Supertrend(ta.ResampleWeekly(bars), cfg.WeeklyPeriod, cfg.WeeklyMult))

	macdLine, macdSignal, macdHist := ta.MACD(closes)
	atr := ta.ATRSeries(bars, cfg.ATRPeriod)

	snap := types.TechnicalSnapshot{
		Symbol:    symbol,
		LastPrice: latest.Close,
		SMA20:     ta.SMA(closes, 20),
		SMA50:     ta.SMA(closes, 50),
		SMA100:    ta.SMA(closes, 100),
		SMA200:    ta.SMA(closes, 200),
		EMA9:      ta.EMA(closes, 9),
		EMA21:     ta.EMA(closes, 21),
		EMA50:     ta.EMA(closes, 50),
		RSI14:     ta.RSI(closes, cfg.RSIPeriod),

		MACD:       macdLine,
		MACDSignal: macdSignal,
		MACDHist:   macdHist,
		ATR14:      atr[len(atr)-1],

		Supertrend:          daily.Value,
		SupertrendDir:       daily.Direction,
		WeeklySupertrend:    weekly.Value,
		WeeklySupertrendDir: weekly.Direction,

		Volume:      latest.Volume,
		AvgVolume20: ta.AvgVolume(volumes, cfg.AvgVolumeWindow),
		AsOf:        time.Now().UTC(),
	}

	snap.Score = Score(Inputs{
		Price:               snap.LastPrice,
		SMA50:               snap.SMA50,
		SMA100:              snap.SMA100,
		SMA200:              snap.SMA200,
		EMA50:               snap.EMA50,
		RSI14:               snap.RSI14,
		SupertrendDirection: snap.SupertrendDir,
		Volume:              snap.Volume,
		AvgVolume:           snap.AvgVolume20,
		VolumeSpikeMult:     cfg.VolumeSpikeMult,
	})
	snap.Signal = Label(snap.Score)

	return snap, nil
}
