package models

import "time"

// Direction is the trading side an analyzer or consensus recommends.
type Direction string

const (
	Buy     Direction = "buy"
	Sell    Direction = "sell"
	Neutral Direction = "neutral"
)

// IsValid reports whether d is one of the three known directions.
func (d Direction) IsValid() bool {
	switch d {
	case Buy, Sell, Neutral:
		return true
	default:
		return false
	}
}

// IndicatorReading is one indicator snapshot attached to a signal.
// Informational only; aggregation math never depends on it.
type IndicatorReading struct {
	Name   string    `json:"name"`
	Value  float64   `json:"value"`
	Signal Direction `json:"signal"`
}

// PatternMatch is a detected candlestick pattern and the side it supports.
type PatternMatch struct {
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
}

// SignalRecord is one analyzer's opinion for one (symbol, timeframe) pair.
// Price levels of zero mean "not provided" (a Neutral record typically
// carries no levels). A fresh analyzer output is expected, but not
// guaranteed, to satisfy stop < entry < target for Buy (mirrored for
// Sell); the corrector enforces the ordering before levels are used.
type SignalRecord struct {
	Symbol     string             `json:"symbol"`
	Timeframe  string             `json:"timeframe"`
	Signal     Direction          `json:"signal"`
	Confidence float64            `json:"confidence"` // 0..100
	EntryPrice float64            `json:"entry_price,omitempty"`
	StopLoss   float64            `json:"stop_loss,omitempty"`
	TakeProfit float64            `json:"take_profit,omitempty"`
	Indicators []IndicatorReading `json:"indicators,omitempty"`
	Patterns   []PatternMatch     `json:"patterns,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Candle is an OHLCV record consumed by the local technical analyzer.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
