package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	pkgch "github.com/saiuppala9/ai-forex-trader/pkg/clickhouse"
	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

// CHCandleStore implements CandleStore backed by per-timeframe
// ClickHouse candle tables.
type CHCandleStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, l *applogger.Logger) *CHCandleStore {
	return &CHCandleStore{db: ch.DB(), l: l}
}

// CandleSchema are the idempotent DDL statements for the candle tables.
func CandleSchema() []string {
	stmts := []string{`CREATE DATABASE IF NOT EXISTS aiforex`}
	for _, tf := range domrepo.AllTimeframes() {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            bucket DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree()
        PARTITION BY toYYYYMM(bucket)
        ORDER BY (symbol, bucket)`, candleTable(tf)))
	}
	return stmts
}

func candleTable(tf domrepo.Timeframe) string {
	return "aiforex.candles_" + string(tf)
}

func (s *CHCandleStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("unsupported timeframe: %s", tf)
	}
	q := fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, candleTable(tf))
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.l.Error("clickhouse latest_candles query error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}

	s.l.Debug("clickhouse latest_candles ok",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(tmp)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return tmp, nil
}
