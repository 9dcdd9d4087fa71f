package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	drepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
)

// QuotePublisher fans raw quotes onto a broker topic for downstream
// candle aggregation.
type QuotePublisher interface {
	Publish(ctx context.Context, q *models.Quote) error
	PublishBatch(ctx context.Context, quotes []*models.Quote) error
	Close() error
}

// QuoteProcessor routes validated quotes to the configured backend:
// straight into ClickHouse or through Kafka.
type QuoteProcessor struct {
	pub     QuotePublisher
	sink    drepo.QuoteSink
	metrics drepo.Metrics
	backend string
}

func NewQuoteProcessor(pub QuotePublisher, sink drepo.QuoteSink, metrics drepo.Metrics, backend string) *QuoteProcessor {
	return &QuoteProcessor{pub: pub, sink: sink, metrics: metrics, backend: backend}
}

// Process routes a single quote to the configured backend.
func (p *QuoteProcessor) Process(ctx context.Context, q *models.Quote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, q)
	case "clickhouse":
		err = p.sink.Store(ctx, q)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("quote_process")
		return fmt.Errorf("process quote: %w", err)
	}

	p.metrics.RecordLatency("quote_process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple quotes in a batch.
func (p *QuoteProcessor) ProcessBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, quotes)
	case "clickhouse":
		err = p.sink.StoreBatch(ctx, quotes)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("quote_process_batch")
		return fmt.Errorf("process quote batch: %w", err)
	}

	p.metrics.RecordLatency("quote_process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *QuoteProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.sink != nil {
		_ = p.sink.Close()
	}
}
