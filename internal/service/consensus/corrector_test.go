package consensus

import (
	"math"
	"testing"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

func TestCorrectBuyOrdering(t *testing.T) {
	// stop above entry and target below entry must both be rebuilt
	entry, stop, target := Correct(models.Buy, 1.1000, 1.1050, 1.0900, 1.1000)
	if !(stop < entry && entry < target) {
		t.Fatalf("ordering violated: stop=%v entry=%v target=%v", stop, entry, target)
	}
	if got, want := stop, entry*0.997; math.Abs(got-want) > 1e-9 {
		t.Fatalf("stop=%v want %v", got, want)
	}
	if got, want := target, entry*1.005; math.Abs(got-want) > 1e-9 {
		t.Fatalf("target=%v want %v", got, want)
	}
}

func TestCorrectSellOrdering(t *testing.T) {
	entry, stop, target := Correct(models.Sell, 1.1000, 1.0950, 1.1100, 1.1000)
	if !(target < entry && entry < stop) {
		t.Fatalf("ordering violated: target=%v entry=%v stop=%v", target, entry, stop)
	}
}

func TestCorrectEntryProximity(t *testing.T) {
	market := 1.2000
	// entry 2% away from market gets re-anchored just below it for Buy
	entry, _, _ := Correct(models.Buy, 1.2240, 0, 0, market)
	if got, want := entry, market*0.9998; math.Abs(got-want) > 1e-9 {
		t.Fatalf("entry=%v want %v", got, want)
	}
	if math.Abs(entry-market)/market > 0.005 {
		t.Fatalf("corrected entry outside proximity band: %v", entry)
	}

	// and just above it for Sell
	entry, _, _ = Correct(models.Sell, 1.1700, 0, 0, market)
	if got, want := entry, market*1.0002; math.Abs(got-want) > 1e-9 {
		t.Fatalf("entry=%v want %v", got, want)
	}
}

func TestCorrectEntryKeptWithinBand(t *testing.T) {
	market := 1.2000
	in := 1.2003 // 0.025% away, inside the band
	entry, _, _ := Correct(models.Buy, in, 1.1950, 1.2100, market)
	if entry != in {
		t.Fatalf("entry should be kept, got %v", entry)
	}
}

func TestCorrectNoMarketPrice(t *testing.T) {
	// no live price: entry passes through, ordering still enforced
	entry, stop, target := Correct(models.Buy, 1.5000, 1.6000, 1.4000, 0)
	if entry != 1.5000 {
		t.Fatalf("entry should be untouched, got %v", entry)
	}
	if !(stop < entry && entry < target) {
		t.Fatalf("ordering violated without market price: %v %v %v", stop, entry, target)
	}
}

func TestCorrectAbsentLevelsSynthesized(t *testing.T) {
	entry, stop, target := Correct(models.Buy, 1.1000, 0, 0, 1.1000)
	if stop <= 0 || target <= 0 {
		t.Fatalf("absent levels not synthesized: stop=%v target=%v", stop, target)
	}
	if !(stop < entry && entry < target) {
		t.Fatalf("ordering violated: %v %v %v", stop, entry, target)
	}
}

func TestCorrectNeutralPassThrough(t *testing.T) {
	entry, stop, target := Correct(models.Neutral, 1.1, 1.2, 1.0, 1.1)
	if entry != 1.1 || stop != 1.2 || target != 1.0 {
		t.Fatalf("neutral must pass levels through: %v %v %v", entry, stop, target)
	}
}

func TestTradeMetrics(t *testing.T) {
	m := ComputeTradeMetrics(1.1000, 1.0980, 1.1050)
	if math.Abs(m.StopDistance-0.0020) > 1e-9 {
		t.Fatalf("stop distance=%v", m.StopDistance)
	}
	if math.Abs(m.TargetDistance-0.0050) > 1e-9 {
		t.Fatalf("target distance=%v", m.TargetDistance)
	}
	if math.Abs(m.RiskReward-2.5) > 1e-9 {
		t.Fatalf("risk/reward=%v want 2.5", m.RiskReward)
	}
}

func TestTradeMetricsZeroStopDistance(t *testing.T) {
	m := ComputeTradeMetrics(1.1000, 1.1000, 1.1050)
	if m.RiskReward != 0 {
		t.Fatalf("expected sentinel 0 ratio, got %v", m.RiskReward)
	}
}
