package repository

// Timeframe represents chart resolution buckets the analyzers work on.
type Timeframe string

const (
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// defaultWeight is used for timeframes missing from the weight table.
const defaultWeight = 0.8

// weights favors longer timeframes in the consensus vote.
var weights = map[Timeframe]float64{
	TF5m:  0.6,
	TF15m: 0.7,
	TF1h:  0.8,
	TF4h:  0.9,
	TF1d:  1.0,
}

// preferenceOrder is searched longest-first when adopting price levels.
var preferenceOrder = []Timeframe{TF1d, TF4h, TF1h, TF15m, TF5m}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF5m, TF15m, TF1h, TF4h, TF1d:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1h }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Weight returns the vote weight for tf, defaulting for unknown tags.
func Weight(tf Timeframe) float64 {
	if w, ok := weights[tf]; ok {
		return w
	}
	return defaultWeight
}

// PreferenceOrder returns timeframes from longest to shortest. The slice
// is shared; callers must not mutate it.
func PreferenceOrder() []Timeframe { return preferenceOrder }

// AllTimeframes returns every supported timeframe, shortest first.
func AllTimeframes() []Timeframe {
	return []Timeframe{TF5m, TF15m, TF1h, TF4h, TF1d}
}
