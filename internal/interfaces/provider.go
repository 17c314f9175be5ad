package interfaces

import (
	"context"
	"time"

	"trend-signal-bot/internal/types"
)

// BarProvider supplies daily OHLCV bars for a symbol over a date range,
// ordered by date ascending. Implementations may fail on network or
// rate-limit errors; the caller decides the fallback policy.
type BarProvider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error)
}
