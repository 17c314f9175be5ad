package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"trend-signal-bot/internal/types"
)

type stubProvider struct {
	name  string
	bars  []types.Bar
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error) {
	s.calls++
	return s.bars, s.err
}

func testBars(dates ...time.Time) []types.Bar {
	bars := make([]types.Bar, len(dates))
	for i, d := range dates {
		bars[i] = types.Bar{Date: d, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	return bars
}

func TestChainFirstSuccessShortCircuits(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &stubProvider{name: "nse", bars: testBars(d)}
	second := &stubProvider{name: "yahoo", bars: testBars(d)}

	bars, attempts, err := NewChain(first, second).Fetch(context.Background(), "TCS", d, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	if len(attempts) != 1 || attempts[0].Provider != "nse" || attempts[0].Err != nil {
		t.Fatalf("attempts = %+v, want one clean nse attempt", attempts)
	}
	if second.calls != 0 {
		t.Fatal("fallback provider was called despite a first success")
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &stubProvider{name: "nse", err: errors.New("blocked")}
	second := &stubProvider{name: "yahoo", bars: testBars(d)}

	bars, attempts, err := NewChain(first, second).Fetch(context.Background(), "TCS", d, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}
	if attempts[0].Err == nil || attempts[1].Err != nil {
		t.Fatalf("attempt trail = %+v", attempts)
	}
}

func TestChainEmptyResultCountsAsFailure(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	empty := &stubProvider{name: "nse"}
	backup := &stubProvider{name: "yahoo", bars: testBars(d)}

	bars, attempts, err := NewChain(empty, backup).Fetch(context.Background(), "TCS", d, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 1 {
		t.Fatal("empty first result must fall through to the backup")
	}
	if attempts[0].Err == nil {
		t.Fatal("empty result was not recorded as a failed attempt")
	}
}

func TestChainAllFail(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	chain := NewChain(
		&stubProvider{name: "nse", err: errors.New("blocked")},
		&stubProvider{name: "yahoo", err: errors.New("rate limited")},
	)

	bars, attempts, err := chain.Fetch(context.Background(), "TCS", d, d)
	if bars != nil {
		t.Fatalf("got bars %v from a failed chain", bars)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}

	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("err = %T, want *ChainError", err)
	}
	if chainErr.Symbol != "TCS" || len(chainErr.Attempts) != 2 {
		t.Fatalf("chain error = %+v", chainErr)
	}
}

func TestChainSortsBarsByDate(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)
	out := &stubProvider{name: "nse", bars: testBars(d3, d1, d2)}

	bars, _, err := NewChain(out).Fetch(context.Background(), "TCS", d1, d3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Before(bars[i-1].Date) {
			t.Fatalf("bars out of order at %d: %v before %v", i, bars[i].Date, bars[i-1].Date)
		}
	}
}
