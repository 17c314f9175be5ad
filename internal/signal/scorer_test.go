package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"trend-signal-bot/internal/types"
)

func TestScore(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name      string
		in        Inputs
		wantScore int
		wantLabel string
	}{
		{
			name: "mixed trend resolves to sell",
			// Above the long MAs but below EMA50, bearish Supertrend and a
			// death cross: +2 +1 -1 -2 +0 -2 = -2.
			in: Inputs{
				Price: 100, SMA200: 90, SMA100: 95, EMA50: 105,
				SMA50: 80, RSI14: 55,
				SupertrendDirection: types.DirBearish,
			},
			wantScore: -2,
			wantLabel: types.SignalSell,
		},
		{
			name: "full bullish alignment",
			// +2 +1 +1 +2 +2 +2 +1 = 11.
			in: Inputs{
				Price: 100, SMA200: 80, SMA100: 85, EMA50: 90,
				SMA50: 95, RSI14: 25,
				SupertrendDirection: types.DirBullish,
				Volume:              200, AvgVolume: 100,
			},
			wantScore: 11,
			wantLabel: types.SignalStrongBuy,
		},
		{
			name: "full bearish alignment",
			in: Inputs{
				Price: 100, SMA200: 120, SMA100: 115, EMA50: 110,
				SMA50: 105, RSI14: 75,
				SupertrendDirection: types.DirBearish,
			},
			wantScore: -10,
			wantLabel: types.SignalStrongSell,
		},
		{
			name: "rsi boundaries are strict",
			in: Inputs{
				Price: 100, RSI14: 70,
				SupertrendDirection: types.DirBullish,
			},
			wantScore: 2,
			wantLabel: types.SignalBuy,
		},
		{
			name: "volume spike needs more than 1.5x average",
			in: Inputs{
				Price: 100, Volume: 150, AvgVolume: 100,
				SupertrendDirection: types.DirBullish,
			},
			wantScore: 2,
			wantLabel: types.SignalBuy,
		},
		{
			name: "volume spike just above threshold",
			in: Inputs{
				Price: 100, Volume: 151, AvgVolume: 100,
				SupertrendDirection: types.DirBullish,
			},
			wantScore: 3,
			wantLabel: types.SignalBuy,
		},
		{
			name: "cross needs both averages defined",
			in: Inputs{
				Price: 100, SMA50: 95, SMA200: nan,
			},
			wantScore: 0,
			wantLabel: types.SignalNeutral,
		},
		{
			name:      "all undefined scores zero",
			in:        Inputs{Price: 100, SMA50: nan, SMA100: nan, SMA200: nan, EMA50: nan, RSI14: nan, AvgVolume: nan},
			wantScore: 0,
			wantLabel: types.SignalNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.in)
			assert.Equal(t, tt.wantScore, got)
			assert.Equal(t, tt.wantLabel, Label(got))
		})
	}
}

func TestLabelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{5, types.SignalStrongBuy},
		{7, types.SignalStrongBuy},
		{2, types.SignalBuy},
		{4, types.SignalBuy},
		{1, types.SignalNeutral},
		{0, types.SignalNeutral},
		{-1, types.SignalNeutral},
		{-2, types.SignalSell},
		{-4, types.SignalSell},
		{-5, types.SignalStrongSell},
		{-9, types.SignalStrongSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score %d", tt.score)
	}
}
