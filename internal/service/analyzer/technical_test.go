package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	"github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	"github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

type stubCandleStore struct {
	candles []models.Candle
	err     error
}

func (s *stubCandleStore) GetLatestNCandles(_ context.Context, _ string, n int, _ repository.Timeframe) ([]models.Candle, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n > len(s.candles) {
		n = len(s.candles)
	}
	return s.candles[len(s.candles)-n:], nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// trendCandles builds a monotone series of bullish (step>0) or bearish
// (step<0) candles.
func trendCandles(n int, start, step float64) []models.Candle {
	out := make([]models.Candle, n)
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		open := start + float64(i)*step
		close := open + step
		high := close
		low := open
		if step < 0 {
			high, low = open, close
		}
		out[i] = models.Candle{
			Bucket: ts.Add(time.Duration(i) * time.Hour),
			Symbol: "EURUSD",
			Open:   open,
			High:   high + 0.0001,
			Low:    low - 0.0001,
			Close:  close,
			Volume: 1000,
		}
	}
	return out
}

func TestTechnicalUptrendSignalsBuy(t *testing.T) {
	store := &stubCandleStore{candles: trendCandles(60, 1.1000, 0.0005)}
	a := NewTechnical(store, testLogger(t))

	rec, err := a.Analyze(context.Background(), "EURUSD", repository.TF1h)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rec.Signal != models.Buy {
		t.Fatalf("signal=%s want buy", rec.Signal)
	}
	if rec.EntryPrice <= 0 {
		t.Fatalf("directional signal must carry an entry, got %v", rec.EntryPrice)
	}
	if rec.Confidence < 50 || rec.Confidence > 100 {
		t.Fatalf("confidence out of range: %v", rec.Confidence)
	}
	if len(rec.Indicators) != 3 {
		t.Fatalf("expected 3 indicator readings, got %d", len(rec.Indicators))
	}
	if rec.Timeframe != "1h" {
		t.Fatalf("timeframe=%s want 1h", rec.Timeframe)
	}
}

func TestTechnicalDowntrendSignalsSell(t *testing.T) {
	store := &stubCandleStore{candles: trendCandles(60, 1.3000, -0.0005)}
	a := NewTechnical(store, testLogger(t))

	rec, err := a.Analyze(context.Background(), "EURUSD", repository.TF4h)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rec.Signal != models.Sell {
		t.Fatalf("signal=%s want sell", rec.Signal)
	}
	// Sell levels: target below entry, stop above.
	if !(rec.TakeProfit < rec.EntryPrice) {
		t.Fatalf("sell target must sit below entry: %v >= %v", rec.TakeProfit, rec.EntryPrice)
	}
}

func TestTechnicalInsufficientData(t *testing.T) {
	store := &stubCandleStore{candles: trendCandles(5, 1.1, 0.0005)}
	a := NewTechnical(store, testLogger(t))

	if _, err := a.Analyze(context.Background(), "EURUSD", repository.TF1h); err == nil {
		t.Fatalf("expected error with 5 candles")
	}
}

func TestTechnicalDeterministic(t *testing.T) {
	store := &stubCandleStore{candles: trendCandles(60, 1.1000, 0.0005)}
	a := NewTechnical(store, testLogger(t))

	r1, err := a.Analyze(context.Background(), "EURUSD", repository.TF1h)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	r2, err := a.Analyze(context.Background(), "EURUSD", repository.TF1h)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if r1.Signal != r2.Signal || r1.Confidence != r2.Confidence || r1.EntryPrice != r2.EntryPrice {
		t.Fatalf("analysis not deterministic:\n%+v\n%+v", r1, r2)
	}
}

func TestDetectThreeWhiteSoldiers(t *testing.T) {
	candles := trendCandles(10, 1.1000, 0.0010)
	hits := detectPatterns(candles)
	found := false
	for _, h := range hits {
		if h.match.Name == "three_white_soldiers" {
			found = true
			if h.match.Direction != models.Buy {
				t.Fatalf("soldiers must be bullish, got %s", h.match.Direction)
			}
		}
	}
	if !found {
		t.Fatalf("three white soldiers not detected in monotone uptrend")
	}
}

func TestDetectBearishEngulfing(t *testing.T) {
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Bucket: ts, Open: 1.1000, High: 1.1021, Low: 1.0999, Close: 1.1020},
		{Bucket: ts.Add(time.Hour), Open: 1.1030, High: 1.1031, Low: 1.0989, Close: 1.0990},
	}
	hits := detectPatterns(candles)
	found := false
	for _, h := range hits {
		if h.match.Name == "bearish_engulfing" && h.match.Direction == models.Sell {
			found = true
		}
	}
	if !found {
		t.Fatalf("bearish engulfing not detected: %+v", hits)
	}
}
