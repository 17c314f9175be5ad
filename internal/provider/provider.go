// Package provider implements the OHLCV data sources and their fallback
// chain: each provider is tried in order, every attempt is recorded as a
// tagged result, and the first success short-circuits.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/logger"
	"trend-signal-bot/internal/types"
)

// Attempt records one provider try in a chain fetch.
type Attempt struct {
	Provider string
	Err      error
}

// ChainError carries every failed attempt when no provider delivered bars.
type ChainError struct {
	Symbol   string
	Attempts []Attempt
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return fmt.Sprintf("all providers failed for %s: %s", e.Symbol, strings.Join(parts, "; "))
}

// Chain tries providers in order until one returns bars.
type Chain struct {
	providers []interfaces.BarProvider
}

func NewChain(providers ...interfaces.BarProvider) *Chain {
	return &Chain{providers: providers}
}

// Fetch returns the first successful provider's bars along with the attempt
// trail. On total failure the error is a *ChainError.
func (c *Chain) Fetch(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, []Attempt, error) {
	attempts := make([]Attempt, 0, len(c.providers))

	for _, p := range c.providers {
		bars, err := p.Fetch(ctx, symbol, from, to)
		if err == nil && len(bars) == 0 {
			err = fmt.Errorf("no bars returned")
		}
		attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
		if err != nil {
			logger.Warn(ctx, "Provider fetch failed, trying next",
				"provider", p.Name(), "symbol", symbol, "error", err)
			continue
		}
		sortBars(bars)
		return bars, attempts, nil
	}

	return nil, attempts, &ChainError{Symbol: symbol, Attempts: attempts}
}

func sortBars(bars []types.Bar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
}
