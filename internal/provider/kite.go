package provider

import (
	"context"
	"fmt"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/types"
)

// Kite fetches daily bars from the Zerodha Kite Connect historical-data API.
// Kite addresses instruments by numeric token, so the caller supplies a
// symbol-to-token map from the instruments dump.
type Kite struct {
	kc     *kiteconnect.Client
	tokens map[string]int
}

var _ interfaces.BarProvider = (*Kite)(nil)

func NewKite(apiKey, accessToken string, tokens map[string]int) *Kite {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &Kite{kc: kc, tokens: tokens}
}

func (k *Kite) Name() string { return "kite" }

func (k *Kite) Fetch(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error) {
	token, ok := k.tokens[symbol]
	if !ok {
		return nil, fmt.Errorf("no instrument token configured for %s", symbol)
	}

	data, err := k.kc.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("fetching Kite history for %s: %w", symbol, err)
	}

	bars := make([]types.Bar, 0, len(data))
	for _, d := range data {
		bars = append(bars, types.Bar{
			Date:   d.Date.Time,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: float64(d.Volume),
		})
	}
	return bars, nil
}
