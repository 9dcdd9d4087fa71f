package models

import "time"

// Strength buckets the consensus agreement ratio for display.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// ConsensusRecord is the aggregated recommendation across all requested
// timeframes for one symbol. Confidence is derived purely from the
// agreement ratio among contributing records (round(ratio*100)), never
// passed through from a single analyzer.
type ConsensusRecord struct {
	Symbol           string    `json:"symbol"`
	Signal           Direction `json:"signal"`
	Confidence       float64   `json:"confidence"` // 0..100
	Strength         Strength  `json:"strength"`
	AgreementRatio   float64   `json:"agreement_ratio"` // winning weight / total weight
	PrimaryTimeframe string    `json:"primary_timeframe"`
	EntryPrice       float64   `json:"entry_price,omitempty"`
	StopLoss         float64   `json:"stop_loss,omitempty"`
	TakeProfit       float64   `json:"take_profit,omitempty"`
	RiskRewardRatio  float64   `json:"risk_reward_ratio"` // 0 when stop distance is zero
	RiskPercent      float64   `json:"risk_percent"`
	MarketPrice      float64   `json:"market_price,omitempty"` // reference price used for correction, 0 if unavailable

	// Full contributing set, kept for transparency/audit in the UI.
	PerTimeframeSignals []SignalRecord `json:"per_timeframe_signals"`

	Timestamp time.Time `json:"timestamp"`
}
