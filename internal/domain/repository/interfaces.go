package repository

import (
	"context"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

// MarketStream is a live quote feed from a market-data provider.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PriceSource answers "what is the current tradable price for a symbol".
// ok is false when no quote has been seen (the corrector then degrades
// to ordering-only correction).
type PriceSource interface {
	LastPrice(symbol string) (price float64, ok bool)
}

// HistoryStore is the append-only signal history log, keyed by symbol.
// Appends for the same symbol are serialized by the implementation so
// Recent always observes newest-first ordering.
type HistoryStore interface {
	Append(ctx context.Context, symbol string, rec *models.ConsensusRecord) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.ConsensusRecord, error)
	Close() error
}

// SignalPublisher fans consensus records out to the durable archive pipeline.
type SignalPublisher interface {
	Publish(ctx context.Context, rec *models.ConsensusRecord) error
	Close() error
}

// SignalArchive is the durable store of consensus records (fed from the
// publisher via the archive consumer).
type SignalArchive interface {
	Store(ctx context.Context, rec *models.ConsensusRecord) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.ConsensusRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// QuoteSink receives validated quotes from the collector pipeline.
type QuoteSink interface {
	Store(ctx context.Context, q *models.Quote) error
	StoreBatch(ctx context.Context, quotes []*models.Quote) error
	Close() error
}

// CandleStore provides read-only OHLCV access for the local analyzer.
type CandleStore interface {
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// Metrics abstracts operational metrics recording.
type Metrics interface {
	RecordConsensus(symbol string, signal string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
