package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/service/consensus"
	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

type stubAnalyzer struct {
	records map[domrepo.Timeframe]models.SignalRecord
	errs    map[domrepo.Timeframe]error
}

func (s *stubAnalyzer) Analyze(_ context.Context, symbol string, tf domrepo.Timeframe) (models.SignalRecord, error) {
	if err, ok := s.errs[tf]; ok {
		return models.SignalRecord{}, err
	}
	rec, ok := s.records[tf]
	if !ok {
		return models.SignalRecord{}, fmt.Errorf("no data for %s", tf)
	}
	rec.Symbol = symbol
	return rec, nil
}

type stubPrices struct {
	price float64
	ok    bool
}

func (s *stubPrices) LastPrice(string) (float64, bool) { return s.price, s.ok }

type nopMetrics struct{}

func (nopMetrics) RecordConsensus(string, string)  {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}

func signalAt(tf domrepo.Timeframe, dir models.Direction) models.SignalRecord {
	return models.SignalRecord{
		Timeframe:  string(tf),
		Signal:     dir,
		Confidence: 70,
		EntryPrice: 1.1000,
		StopLoss:   1.0980,
		TakeProfit: 1.1050,
		Timestamp:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestUseCase(t *testing.T, analyzer *stubAnalyzer, prices domrepo.PriceSource) *ConsensusUseCase {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewConsensusUseCase(analyzer, prices, repository.NewMemoryHistory(), nopMetrics{}, log)
}

func TestAnalyzeFanInAllTimeframes(t *testing.T) {
	analyzer := &stubAnalyzer{records: map[domrepo.Timeframe]models.SignalRecord{
		domrepo.TF5m:  signalAt(domrepo.TF5m, models.Sell),
		domrepo.TF15m: signalAt(domrepo.TF15m, models.Sell),
		domrepo.TF1h:  signalAt(domrepo.TF1h, models.Buy),
		domrepo.TF4h:  signalAt(domrepo.TF4h, models.Buy),
		domrepo.TF1d:  signalAt(domrepo.TF1d, models.Buy),
	}}
	uc := newTestUseCase(t, analyzer, &stubPrices{price: 1.1000, ok: true})

	rec, err := uc.Analyze(context.Background(), "EURUSD", nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rec.Signal != models.Buy {
		t.Fatalf("signal=%s want buy", rec.Signal)
	}
	if len(rec.PerTimeframeSignals) != 5 {
		t.Fatalf("expected 5 contributing records, got %d", len(rec.PerTimeframeSignals))
	}
	if rec.MarketPrice != 1.1000 {
		t.Fatalf("market price lost: %v", rec.MarketPrice)
	}
}

func TestAnalyzeDropsFailedTimeframes(t *testing.T) {
	analyzer := &stubAnalyzer{
		records: map[domrepo.Timeframe]models.SignalRecord{
			domrepo.TF1h: signalAt(domrepo.TF1h, models.Buy),
			domrepo.TF4h: signalAt(domrepo.TF4h, models.Buy),
		},
		errs: map[domrepo.Timeframe]error{
			domrepo.TF1d: errors.New("upstream down"),
		},
	}
	uc := newTestUseCase(t, analyzer, &stubPrices{price: 1.1000, ok: true})

	rec, err := uc.Analyze(context.Background(), "EURUSD",
		[]domrepo.Timeframe{domrepo.TF1h, domrepo.TF4h, domrepo.TF1d})
	if err != nil {
		t.Fatalf("partial failure must not fail the consensus: %v", err)
	}
	if len(rec.PerTimeframeSignals) != 2 {
		t.Fatalf("expected 2 surviving records, got %d", len(rec.PerTimeframeSignals))
	}
	if rec.Signal != models.Buy {
		t.Fatalf("signal=%s want buy", rec.Signal)
	}
}

func TestAnalyzeDropsInvalidRecords(t *testing.T) {
	bad := signalAt(domrepo.TF1d, models.Buy)
	bad.Confidence = 400
	analyzer := &stubAnalyzer{records: map[domrepo.Timeframe]models.SignalRecord{
		domrepo.TF1h: signalAt(domrepo.TF1h, models.Sell),
		domrepo.TF1d: bad,
	}}
	uc := newTestUseCase(t, analyzer, &stubPrices{price: 1.1000, ok: true})

	rec, err := uc.Analyze(context.Background(), "EURUSD",
		[]domrepo.Timeframe{domrepo.TF1h, domrepo.TF1d})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(rec.PerTimeframeSignals) != 1 {
		t.Fatalf("invalid record not dropped: %d records", len(rec.PerTimeframeSignals))
	}
	if rec.Signal != models.Sell {
		t.Fatalf("signal=%s want sell", rec.Signal)
	}
}

func TestAnalyzeAllTimeframesFail(t *testing.T) {
	analyzer := &stubAnalyzer{errs: map[domrepo.Timeframe]error{
		domrepo.TF1h: errors.New("down"),
		domrepo.TF4h: errors.New("down"),
	}}
	uc := newTestUseCase(t, analyzer, &stubPrices{})

	_, err := uc.Analyze(context.Background(), "EURUSD",
		[]domrepo.Timeframe{domrepo.TF1h, domrepo.TF4h})
	if !errors.Is(err, consensus.ErrNoSignals) {
		t.Fatalf("expected ErrNoSignals, got %v", err)
	}
}

func TestAnalyzeNoMarketPrice(t *testing.T) {
	analyzer := &stubAnalyzer{records: map[domrepo.Timeframe]models.SignalRecord{
		domrepo.TF1h: signalAt(domrepo.TF1h, models.Buy),
	}}
	uc := newTestUseCase(t, analyzer, &stubPrices{ok: false})

	rec, err := uc.Analyze(context.Background(), "EURUSD", []domrepo.Timeframe{domrepo.TF1h})
	if err != nil {
		t.Fatalf("missing price must degrade, not fail: %v", err)
	}
	if rec.MarketPrice != 0 {
		t.Fatalf("market price should be absent, got %v", rec.MarketPrice)
	}
	if !(rec.StopLoss < rec.EntryPrice && rec.EntryPrice < rec.TakeProfit) {
		t.Fatalf("ordering must hold without a live price: %v %v %v",
			rec.StopLoss, rec.EntryPrice, rec.TakeProfit)
	}
}

func TestAnalyzeAppendsHistory(t *testing.T) {
	analyzer := &stubAnalyzer{records: map[domrepo.Timeframe]models.SignalRecord{
		domrepo.TF1h: signalAt(domrepo.TF1h, models.Buy),
	}}
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	history := repository.NewMemoryHistory()
	uc := NewConsensusUseCase(analyzer, &stubPrices{price: 1.1, ok: true}, history, nopMetrics{}, log)

	if _, err := uc.Analyze(context.Background(), "EURUSD", []domrepo.Timeframe{domrepo.TF1h}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	got, err := history.Recent(context.Background(), "EURUSD", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("consensus not recorded in history: %d entries", len(got))
	}
}

func TestGetTimeframeSignalUnknownTimeframe(t *testing.T) {
	uc := newTestUseCase(t, &stubAnalyzer{}, &stubPrices{})
	if _, err := uc.GetTimeframeSignal(context.Background(), "EURUSD", "2w"); err == nil {
		t.Fatalf("unknown timeframe must be rejected")
	}
}
