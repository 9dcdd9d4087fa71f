package consensus

import (
	"math"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

// Price level correction constants. Entries drifting more than the
// proximity band away from the live price are re-anchored just inside
// it; stops and targets that break the ordering invariant are rebuilt
// as fixed fractions of the corrected entry.
const (
	entryProximityBand = 0.005  // 0.5% of market price
	buyEntryOffset     = 0.9998 // entry slightly below market for Buy
	sellEntryOffset    = 1.0002 // entry slightly above market for Sell
	stopFraction       = 0.003  // 0.3% of corrected entry
	targetFraction     = 0.005  // 0.5% of corrected entry
)

// Correct returns entry/stop/target levels satisfying the ordering
// invariant (stop < entry < target for Buy, mirrored for Sell) and, when
// a market price is supplied, within the proximity band of it. A
// marketPrice <= 0 means the live price is unavailable: the proximity
// check is skipped and ordering is enforced around the given entry.
// Zero levels are treated as absent and synthesized from the entry.
// Neutral direction passes every level through untouched.
//
// Pure function: deterministic, no side effects. Percentages are
// fractions of the corrected entry, not of the raw input.
func Correct(dir models.Direction, entry, stop, target, marketPrice float64) (float64, float64, float64) {
	if dir != models.Buy && dir != models.Sell {
		return entry, stop, target
	}

	if marketPrice > 0 {
		if math.Abs(entry-marketPrice)/marketPrice > entryProximityBand {
			if dir == models.Buy {
				entry = marketPrice * buyEntryOffset
			} else {
				entry = marketPrice * sellEntryOffset
			}
		}
	}

	if dir == models.Buy {
		if stop <= 0 || stop >= entry {
			stop = entry * (1 - stopFraction)
		}
		if target <= entry {
			target = entry * (1 + targetFraction)
		}
	} else {
		if stop <= entry {
			stop = entry * (1 + stopFraction)
		}
		if target <= 0 || target >= entry {
			target = entry * (1 - targetFraction)
		}
	}

	return entry, stop, target
}

// TradeMetrics are the risk figures derived from corrected levels.
// Distances are in native price units; pip conversion is a display
// concern.
type TradeMetrics struct {
	StopDistance   float64
	TargetDistance float64
	RiskReward     float64 // 0 when stop distance is zero (entry == stop)
	RiskPercent    float64
}

// ComputeTradeMetrics derives stop/target distances, risk/reward and
// risk percentage from already-corrected levels. A zero stop distance is
// a legitimate degenerate market state and yields a zero ratio rather
// than an error.
func ComputeTradeMetrics(entry, stop, target float64) TradeMetrics {
	m := TradeMetrics{
		StopDistance:   math.Abs(entry - stop),
		TargetDistance: math.Abs(target - entry),
	}
	if m.StopDistance > 0 {
		m.RiskReward = m.TargetDistance / m.StopDistance
	}
	if entry > 0 {
		m.RiskPercent = m.StopDistance / entry * 100
	}
	return m
}
