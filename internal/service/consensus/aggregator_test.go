package consensus

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

func rec(tf string, dir models.Direction, conf float64) models.SignalRecord {
	return models.SignalRecord{
		Symbol:     "EURUSD",
		Timeframe:  tf,
		Signal:     dir,
		Confidence: conf,
		EntryPrice: 1.1000,
		StopLoss:   1.0980,
		TakeProfit: 1.1050,
		Timestamp:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	_, err := Aggregate(nil, 1.1)
	if !errors.Is(err, ErrNoSignals) {
		t.Fatalf("expected ErrNoSignals, got %v", err)
	}
}

func TestAggregateWeightedVote(t *testing.T) {
	// 5m/15m Sell (0.6+0.7=1.3) vs 1h/4h/1d Buy (0.8+0.9+1.0=2.7)
	records := []models.SignalRecord{
		rec("5m", models.Sell, 60),
		rec("15m", models.Sell, 70),
		rec("1h", models.Buy, 80),
		rec("4h", models.Buy, 90),
		rec("1d", models.Buy, 100),
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.Signal != models.Buy {
		t.Fatalf("signal=%s want buy", out.Signal)
	}
	if math.Abs(out.AgreementRatio-0.675) > 1e-9 {
		t.Fatalf("ratio=%v want 0.675", out.AgreementRatio)
	}
	if out.Strength != models.StrengthModerate {
		t.Fatalf("strength=%s want moderate", out.Strength)
	}
	if out.Confidence != 68 {
		t.Fatalf("confidence=%v want 68", out.Confidence)
	}
	if out.PrimaryTimeframe != "1d" {
		t.Fatalf("primary=%s want 1d", out.PrimaryTimeframe)
	}
	if len(out.PerTimeframeSignals) != 5 {
		t.Fatalf("transparency payload lost: %d records", len(out.PerTimeframeSignals))
	}
}

func TestAggregateTieIsNeutral(t *testing.T) {
	// buy 0.6+0.8 = 1.4 vs sell 0.7+0.7 = 1.4
	records := []models.SignalRecord{
		rec("5m", models.Buy, 60),  // 0.6
		rec("1h", models.Buy, 60),  // 0.8 -> buy 1.4
		rec("15m", models.Sell, 60), // 0.7
		rec("15m", models.Sell, 60), // 0.7 -> sell 1.4
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.Signal != models.Neutral {
		t.Fatalf("tied vote must be neutral, got %s", out.Signal)
	}
}

func TestAggregateAllNeutral(t *testing.T) {
	records := []models.SignalRecord{
		rec("1h", models.Neutral, 50),
		rec("4h", models.Neutral, 50),
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.Signal != models.Neutral {
		t.Fatalf("signal=%s want neutral", out.Signal)
	}
	if out.Strength != models.StrengthStrong {
		t.Fatalf("unanimous neutral should be strong, got %s", out.Strength)
	}
}

func TestAggregatePrimaryPreference(t *testing.T) {
	records := []models.SignalRecord{
		rec("5m", models.Sell, 60),
		rec("1h", models.Buy, 80),
		rec("1d", models.Buy, 90),
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.Signal != models.Buy {
		t.Fatalf("signal=%s want buy", out.Signal)
	}
	if out.PrimaryTimeframe != "1d" {
		t.Fatalf("primary=%s want 1d (longest matching)", out.PrimaryTimeframe)
	}
}

func TestAggregatePrimarySkipsDisagreeingLongest(t *testing.T) {
	// buy 1.3 vs sell 1.0 -> Buy; 1d disagrees, so the longest
	// Buy-matching timeframe (15m) supplies the levels.
	records := []models.SignalRecord{
		rec("5m", models.Buy, 60),
		rec("15m", models.Buy, 60),
		rec("1d", models.Sell, 60),
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.PrimaryTimeframe != "15m" {
		t.Fatalf("primary=%s want 15m", out.PrimaryTimeframe)
	}
}

func TestAggregatePrimaryFallbackNoMatch(t *testing.T) {
	// tied buy/sell vote -> Neutral consensus with no Neutral record:
	// fall back to the longest timeframe present regardless of signal.
	records := []models.SignalRecord{
		rec("15m", models.Buy, 60),  // 0.7
		rec("15m", models.Sell, 60), // 0.7
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.Signal != models.Neutral {
		t.Fatalf("signal=%s want neutral", out.Signal)
	}
	if out.PrimaryTimeframe != "15m" {
		t.Fatalf("primary=%s want 15m", out.PrimaryTimeframe)
	}
}

func TestAggregateSingleRecord(t *testing.T) {
	r := rec("4h", models.Sell, 75)
	out, err := Aggregate([]models.SignalRecord{r}, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if out.Signal != models.Sell {
		t.Fatalf("signal=%s want sell", out.Signal)
	}
	if out.AgreementRatio != 1.0 || out.Strength != models.StrengthStrong {
		t.Fatalf("single record must be strong: ratio=%v strength=%s", out.AgreementRatio, out.Strength)
	}
	// levels still pass through the corrector
	if !(out.TakeProfit < out.EntryPrice && out.EntryPrice < out.StopLoss) {
		t.Fatalf("sell ordering violated: %v %v %v", out.TakeProfit, out.EntryPrice, out.StopLoss)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	records := []models.SignalRecord{
		rec("5m", models.Sell, 60),
		rec("1h", models.Buy, 80),
		rec("1d", models.Buy, 90),
	}
	a, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	b, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("aggregate is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestAggregateBuyLevelOrdering(t *testing.T) {
	records := []models.SignalRecord{
		rec("1h", models.Buy, 80),
		rec("4h", models.Buy, 90),
	}
	out, err := Aggregate(records, 1.1000)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !(out.StopLoss < out.EntryPrice && out.EntryPrice < out.TakeProfit) {
		t.Fatalf("buy ordering violated: %v %v %v", out.StopLoss, out.EntryPrice, out.TakeProfit)
	}
	if math.Abs(out.EntryPrice-1.1000)/1.1000 > 0.005+1e-9 {
		t.Fatalf("entry outside proximity band: %v", out.EntryPrice)
	}
}

func TestValidateRecord(t *testing.T) {
	good := rec("1h", models.Buy, 80)
	if err := ValidateRecord(&good); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	bad := rec("1h", models.Buy, 140)
	if err := ValidateRecord(&bad); err == nil {
		t.Fatalf("confidence 140 must be rejected")
	}

	bad = rec("2w", models.Buy, 80)
	if err := ValidateRecord(&bad); err == nil {
		t.Fatalf("unknown timeframe must be rejected")
	}

	bad = rec("1h", models.Direction("hold"), 80)
	var ire *InvalidRecordError
	if err := ValidateRecord(&bad); !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRecordError, got %v", err)
	}
}
