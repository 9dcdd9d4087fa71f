package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/domain/service"
	"github.com/saiuppala9/ai-forex-trader/internal/service/consensus"
	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

const defaultAnalysisTimeout = 15 * time.Second

// ConsensusUseCase runs the multi-timeframe analysis: fan out one
// analyzer call per timeframe, drop failures and invalid records, and
// aggregate the rest into a consensus recommendation. History append and
// Kafka publish are best-effort; the caller still gets the consensus
// when they fail.
type ConsensusUseCase struct {
	analyzer  service.TimeframeAnalyzer
	prices    domrepo.PriceSource
	history   domrepo.HistoryStore
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	timeout   time.Duration
}

type ConsensusOption func(*ConsensusUseCase)

func WithAnalysisTimeout(d time.Duration) ConsensusOption {
	return func(uc *ConsensusUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithPublisher wires the optional Kafka fan-out.
func WithPublisher(pub domrepo.SignalPublisher) ConsensusOption {
	return func(uc *ConsensusUseCase) { uc.publisher = pub }
}

func NewConsensusUseCase(
	analyzer service.TimeframeAnalyzer,
	prices domrepo.PriceSource,
	history domrepo.HistoryStore,
	metrics domrepo.Metrics,
	log *applogger.Logger,
	opts ...ConsensusOption,
) *ConsensusUseCase {
	uc := &ConsensusUseCase{
		analyzer: analyzer,
		prices:   prices,
		history:  history,
		metrics:  metrics,
		log:      log,
		timeout:  defaultAnalysisTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Analyze produces the consensus for symbol across the given timeframes
// (all known timeframes when empty).
func (uc *ConsensusUseCase) Analyze(ctx context.Context, symbol string, tfs []domrepo.Timeframe) (*models.ConsensusRecord, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if len(tfs) == 0 {
		tfs = domrepo.AllTimeframes()
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()

	type item struct {
		tf  domrepo.Timeframe
		rec models.SignalRecord
		err error
	}
	ch := make(chan item, len(tfs))
	var wg sync.WaitGroup
	for _, tf := range tfs {
		wg.Add(1)
		go func(tf domrepo.Timeframe) {
			defer wg.Done()
			rec, err := uc.analyzer.Analyze(ctx, symbol, tf)
			ch <- item{tf: tf, rec: rec, err: err}
		}(tf)
	}
	go func() { wg.Wait(); close(ch) }()

	records := make([]models.SignalRecord, 0, len(tfs))
	for it := range ch {
		if it.err != nil {
			uc.metrics.RecordError("analyze_timeframe")
			uc.log.Warn("timeframe analysis failed",
				applogger.String("symbol", symbol),
				applogger.String("timeframe", string(it.tf)),
				applogger.Error(it.err),
			)
			continue
		}
		if err := consensus.ValidateRecord(&it.rec); err != nil {
			uc.metrics.RecordError("analyze_invalid_record")
			uc.log.Warn("dropping invalid signal record",
				applogger.String("symbol", symbol),
				applogger.String("timeframe", string(it.tf)),
				applogger.Error(err),
			)
			continue
		}
		records = append(records, it.rec)
	}

	// Keep a stable timeframe order regardless of goroutine completion
	// so the response payload and the consensus tiebreaks never depend
	// on scheduling.
	ordered := make([]models.SignalRecord, 0, len(records))
	for _, tf := range domrepo.PreferenceOrder() {
		for i := range records {
			if records[i].Timeframe == string(tf) {
				ordered = append(ordered, records[i])
			}
		}
	}
	records = ordered

	marketPrice := 0.0
	if price, ok := uc.prices.LastPrice(symbol); ok {
		marketPrice = price
	}

	rec, err := consensus.Aggregate(records, marketPrice)
	if err != nil {
		uc.metrics.RecordError("aggregate")
		return nil, err
	}

	uc.metrics.RecordConsensus(symbol, string(rec.Signal))
	uc.metrics.RecordLatency("analyze", time.Since(start).Seconds())

	if err := uc.history.Append(ctx, symbol, rec); err != nil {
		uc.metrics.RecordError("history_append")
		uc.log.Warn("history append failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, rec); err != nil {
			uc.metrics.RecordError("signal_publish")
			uc.log.Warn("signal publish failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}

	return rec, nil
}

// GetTimeframeSignal returns the raw analyzer output for one
// (symbol, timeframe) pair without aggregation.
func (uc *ConsensusUseCase) GetTimeframeSignal(ctx context.Context, symbol string, tf domrepo.Timeframe) (models.SignalRecord, error) {
	if symbol == "" {
		return models.SignalRecord{}, fmt.Errorf("symbol required")
	}
	if !domrepo.IsValidTimeframe(tf) {
		return models.SignalRecord{}, fmt.Errorf("unknown timeframe: %s", tf)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	rec, err := uc.analyzer.Analyze(ctx, symbol, tf)
	if err != nil {
		uc.metrics.RecordError("analyze_timeframe")
		return models.SignalRecord{}, err
	}
	if err := consensus.ValidateRecord(&rec); err != nil {
		uc.metrics.RecordError("analyze_invalid_record")
		return models.SignalRecord{}, err
	}
	return rec, nil
}
