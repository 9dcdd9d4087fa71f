package usecase

import (
	"context"
	"sync"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	drepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	mid "github.com/saiuppala9/ai-forex-trader/internal/middleware"
)

// QuoteCollector consumes quotes from the market stream, pushes them
// through the pipeline, and keeps the last seen price per symbol. It is
// the PriceSource the consensus corrector anchors to.
type QuoteCollector struct {
	stream  drepo.MarketStream
	proc    *QuoteProcessor
	metrics drepo.Metrics
	pipe    *mid.QuotePipeline

	mu   sync.RWMutex
	last map[string]*models.Quote
}

func NewQuoteCollector(stream drepo.MarketStream, proc *QuoteProcessor, metrics drepo.Metrics, pipe *mid.QuotePipeline) *QuoteCollector {
	return &QuoteCollector{
		stream:  stream,
		proc:    proc,
		metrics: metrics,
		pipe:    pipe,
		last:    make(map[string]*models.Quote),
	}
}

// IsConnected returns true if the market stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// LastPrice implements repository.PriceSource.
func (c *QuoteCollector) LastPrice(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.last[symbol]
	if !ok {
		return 0, false
	}
	return q.Price, true
}

// LastQuote returns the full last quote for a symbol.
func (c *QuoteCollector) LastQuote(symbol string) (*models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.last[symbol]
	if !ok {
		return nil, false
	}
	cp := *q
	return &cp, true
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case q := <-qCh:
			if q == nil {
				continue
			}
			c.mu.Lock()
			c.last[q.Symbol] = q
			c.mu.Unlock()

			if c.pipe != nil {
				_ = c.pipe.Process(ctx, q)
			} else {
				_ = c.proc.Process(ctx, q)
			}
			c.metrics.RecordLastPrice(q.Symbol, q.Price)
		}
	}
}

// Processor returns the underlying QuoteProcessor for lifecycle management.
func (c *QuoteCollector) Processor() *QuoteProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
