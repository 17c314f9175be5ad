// Package stoploss manages the three-phase stop-loss of open positions:
// protection (the user's stop, untouched), breakeven (stop raised to at
// least entry once profit reaches 1.5R) and trailing (stop ratchets up with
// the technical candidates once profit reaches 2.0R). The effective stop
// never moves down and phases never regress.
package stoploss

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"trend-signal-bot/internal/docstore"
	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/logger"
	"trend-signal-bot/internal/types"
)

// Thresholds are the profit levels, in R multiples, that advance the phase.
type Thresholds struct {
	BreakevenR float64
	TrailingR  float64
}

// DefaultThresholds advance at 1.5R and 2.0R.
func DefaultThresholds() Thresholds {
	return Thresholds{BreakevenR: 1.5, TrailingR: 2.0}
}

// Manager evaluates open positions against the current technical snapshot
// and ratchets their stop-loss. All I/O goes through the injected store.
type Manager struct {
	store      interfaces.DocStore
	notifier   interfaces.Notifier
	thresholds Thresholds
	now        func() time.Time
}

type Option func(*Manager)

// WithNotifier sends an alert on every phase transition.
func WithNotifier(n interfaces.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithThresholds overrides the 1.5R/2.0R defaults.
func WithThresholds(t Thresholds) Option {
	return func(m *Manager) { m.thresholds = t }
}

// WithClock injects the timestamp source for audit records.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func New(store interfaces.DocStore, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Summary reports what one batch run did.
type Summary struct {
	Processed int
	Updated   int
	Skipped   int
	Failed    int
}

// Run evaluates every open position sequentially. Missing prices or
// technicals skip the position; per-position store errors are counted; the
// batch always completes.
func (m *Manager) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	raws, err := m.store.Query(ctx, docstore.Positions, map[string]any{"status": types.PositionOpen})
	if err != nil {
		return sum, fmt.Errorf("querying open positions: %w", err)
	}

	for _, raw := range raws {
		if ctx.Err() != nil {
			// Interrupted mid-loop: processed entities keep their updates,
			// the rest wait for the next idempotent run.
			return sum, ctx.Err()
		}
		sum.Processed++

		var pos types.Position
		if err := json.Unmarshal(raw, &pos); err != nil {
			logger.ErrorWithErr(ctx, "Skipping unreadable position document", err)
			sum.Failed++
			continue
		}

		var snap types.TechnicalSnapshot
		if err := m.store.Get(ctx, docstore.Technicals, pos.Symbol, &snap); err != nil {
			logger.Warn(ctx, "No technical snapshot for position, skipping",
				"position_id", pos.ID, "symbol", pos.Symbol, "error", err)
			sum.Skipped++
			continue
		}
		if snap.LastPrice <= 0 || math.IsNaN(snap.LastPrice) {
			logger.Warn(ctx, "Snapshot has no usable price, skipping",
				"position_id", pos.ID, "symbol", pos.Symbol)
			sum.Skipped++
			continue
		}

		changed := m.Evaluate(ctx, &pos, &snap)
		if !changed {
			continue
		}

		if err := m.store.Upsert(ctx, docstore.Positions, pos.ID, &pos); err != nil {
			logger.ErrorWithErr(ctx, "Failed to persist position update", err,
				"position_id", pos.ID, "symbol", pos.Symbol)
			sum.Failed++
			continue
		}
		sum.Updated++
	}

	logger.Info(ctx, "Stop-loss batch complete",
		"processed", sum.Processed, "updated", sum.Updated,
		"skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// Evaluate applies one management pass to a position using the given
// snapshot and reports whether the position document changed. Re-running
// with the same inputs changes nothing and appends no history.
func (m *Manager) Evaluate(ctx context.Context, pos *types.Position, snap *types.TechnicalSnapshot) bool {
	price := snap.LastPrice

	initialRisk := pos.EntryPrice - pos.StopLoss
	if initialRisk <= 0 {
		// Degenerate stop at or above entry: manage nothing, keep the
		// user's stop as-is.
		logger.Warn(ctx, "Position has non-positive initial risk, leaving user stop unmanaged",
			"position_id", pos.ID, "symbol", pos.Symbol,
			"entry", pos.EntryPrice, "user_stop", pos.StopLoss)
		return false
	}

	changed := false
	if pos.SLManagement == nil {
		pos.SLManagement = &types.SLManagement{
			Phase:             types.PhaseProtection,
			EffectiveStopLoss: pos.StopLoss,
			InitialRisk:       initialRisk,
		}
		changed = true
	}

	sl := pos.SLManagement
	profitR := (price - pos.EntryPrice) / sl.InitialRisk
	techSL, hasTech := technicalStop(pos.EntryPrice, snap)

	if sl.Phase == types.PhaseProtection && profitR >= m.thresholds.BreakevenR {
		newSL := pos.EntryPrice
		if hasTech && techSL > newSL {
			newSL = techSL
		}
		reason := fmt.Sprintf("breakeven: profit %.2fR >= %.2fR", profitR, m.thresholds.BreakevenR)
		m.transition(ctx, pos, types.PhaseBreakeven, newSL, reason, price, profitR)
		changed = true
	}

	if sl.Phase == types.PhaseBreakeven && profitR >= m.thresholds.TrailingR {
		newSL := sl.EffectiveStopLoss
		if hasTech && techSL > newSL {
			newSL = techSL
		}
		reason := fmt.Sprintf("trailing: profit %.2fR >= %.2fR", profitR, m.thresholds.TrailingR)
		m.transition(ctx, pos, types.PhaseTrailing, newSL, reason, price, profitR)
		changed = true
	}

	if sl.Phase == types.PhaseTrailing && hasTech && techSL > sl.EffectiveStopLoss {
		m.transition(ctx, pos, types.PhaseTrailing, techSL, "trailing ratchet to technical stop", price, profitR)
		changed = true
	}

	return changed
}

// technicalStop picks the highest technical stop candidate strictly above
// entry: the 100-day SMA, and the daily Supertrend only while bullish.
func technicalStop(entry float64, snap *types.TechnicalSnapshot) (float64, bool) {
	best := math.NaN()

	if defined(snap.SMA100) && snap.SMA100 > entry {
		best = snap.SMA100
	}
	if defined(snap.Supertrend) && snap.SupertrendDir == types.DirBullish && snap.Supertrend > entry {
		if math.IsNaN(best) || snap.Supertrend > best {
			best = snap.Supertrend
		}
	}

	if math.IsNaN(best) {
		return 0, false
	}
	return best, true
}

// transition advances the phase and/or raises the stop, appending one audit
// record. The stop is clamped so it never decreases.
func (m *Manager) transition(ctx context.Context, pos *types.Position, toPhase types.SLPhase, newSL float64, reason string, price, profitR float64) {
	sl := pos.SLManagement
	if newSL < sl.EffectiveStopLoss {
		newSL = sl.EffectiveStopLoss
	}

	rec := types.SLTransition{
		Timestamp:     m.now(),
		FromSL:        sl.EffectiveStopLoss,
		ToSL:          newSL,
		FromPhase:     sl.Phase,
		ToPhase:       toPhase,
		Reason:        reason,
		PriceAtChange: price,
		ProfitInR:     profitR,
	}
	sl.History = append(sl.History, rec)

	logger.StopMove(ctx, pos.Symbol, rec.FromSL, rec.ToSL, string(rec.FromPhase), string(rec.ToPhase),
		"position_id", pos.ID, "reason", reason, "profit_r", profitR)

	if m.notifier != nil && rec.FromPhase != rec.ToPhase {
		msg := fmt.Sprintf("%s: stop-loss %s -> %s, SL %.2f -> %.2f (%.2fR)",
			pos.Symbol, rec.FromPhase, rec.ToPhase, rec.FromSL, rec.ToSL, profitR)
		if err := m.notifier.Send(ctx, msg); err != nil {
			logger.Warn(ctx, "Failed to send stop-loss alert", "symbol", pos.Symbol, "error", err)
		}
	}

	sl.Phase = toPhase
	sl.EffectiveStopLoss = newSL
}

func defined(v float64) bool {
	return !math.IsNaN(v) && v > 0
}
