package types

import "time"

// Bar is a single OHLCV bar. Daily bars come from a provider; weekly bars
// come from resampling daily ones.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Supertrend direction values.
const (
	DirBullish = 1
	DirBearish = -1
	DirNone    = 0 // not enough history
)

// SupertrendPoint is the per-bar state of the Supertrend recurrence.
type SupertrendPoint struct {
	BasicUpper float64
	BasicLower float64
	FinalUpper float64
	FinalLower float64
	Value      float64
	Direction  int
}

// Defined reports whether the point carries a computed value.
func (p SupertrendPoint) Defined() bool { return p.Direction != DirNone }

// Signal labels produced by the scorer.
const (
	SignalStrongBuy  = "STRONG_BUY"
	SignalBuy        = "BUY"
	SignalNeutral    = "NEUTRAL"
	SignalSell       = "SELL"
	SignalStrongSell = "STRONG_SELL"
)

// TechnicalSnapshot is the per-symbol document written by the scan batch and
// read by the stop-loss batch. Both batches must use the same cycle's
// snapshot; the AsOf field carries the scan time.
type TechnicalSnapshot struct {
	Symbol              string    `json:"symbol"`
	LastPrice           float64   `json:"last_price"`
	SMA20               float64   `json:"sma_20"`
	SMA50               float64   `json:"sma_50"`
	SMA100              float64   `json:"sma_100"`
	SMA200              float64   `json:"sma_200"`
	EMA9                float64   `json:"ema_9"`
	EMA21               float64   `json:"ema_21"`
	EMA50               float64   `json:"ema_50"`
	RSI14               float64   `json:"rsi_14"`
	MACD                float64   `json:"macd"`
	MACDSignal          float64   `json:"macd_signal"`
	MACDHist            float64   `json:"macd_hist"`
	ATR14               float64   `json:"atr_14"`
	Supertrend          float64   `json:"supertrend"`
	SupertrendDir       int       `json:"supertrend_direction"`
	WeeklySupertrend    float64   `json:"weekly_supertrend"`
	WeeklySupertrendDir int       `json:"weekly_supertrend_direction"`
	Volume              float64   `json:"volume"`
	AvgVolume20         float64   `json:"avg_volume_20"`
	Score               int       `json:"score"`
	Signal              string    `json:"signal"`
	AsOf                time.Time `json:"as_of"`
}

// Stop-loss management phases. Phases only ever advance.
type SLPhase string

const (
	PhaseProtection SLPhase = "protection"
	PhaseBreakeven  SLPhase = "breakeven"
	PhaseTrailing   SLPhase = "trailing"
)

// SLTransition is one audit record in a position's stop-loss history.
// Appended whenever the phase or the effective stop-loss changes.
type SLTransition struct {
	Timestamp     time.Time `json:"timestamp"`
	FromSL        float64   `json:"from_sl"`
	ToSL          float64   `json:"to_sl"`
	FromPhase     SLPhase   `json:"from_phase"`
	ToPhase       SLPhase   `json:"to_phase"`
	Reason        string    `json:"reason"`
	PriceAtChange float64   `json:"price_at_change"`
	ProfitInR     float64   `json:"profit_in_r"`
}

// SLManagement is the managed stop-loss state attached to a position.
// Created lazily on the first management pass.
type SLManagement struct {
	Phase             SLPhase        `json:"phase"`
	EffectiveStopLoss float64        `json:"effective_stop_loss"`
	InitialRisk       float64        `json:"initial_risk"`
	History           []SLTransition `json:"sl_history,omitempty"`
}

// Position status values.
const (
	PositionOpen   = "open"
	PositionClosed = "closed"
)

// Position is an open holding owned by a user. EntryPrice and StopLoss are
// user-set at entry; SLManagement is owned by the stop-loss batch.
type Position struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Symbol       string        `json:"symbol"`
	EntryPrice   float64       `json:"entry_price"`
	StopLoss     float64       `json:"stop_loss"`
	Quantity     int           `json:"quantity"`
	Status       string        `json:"status"`
	SLManagement *SLManagement `json:"stop_loss_management,omitempty"`
}

// CorporateAction is a parsed split/bonus announcement. Ratio is the factor
// by which one pre-action share multiplies (a 10:2 face-value split has
// Ratio 5; a 1:1 bonus has Ratio 2).
type CorporateAction struct {
	Symbol  string    `json:"symbol"`
	Kind    string    `json:"kind"` // SPLIT or BONUS
	Ratio   float64   `json:"ratio"`
	ExDate  time.Time `json:"ex_date"`
	Subject string    `json:"subject"`
}
