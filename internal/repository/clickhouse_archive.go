package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	pkgch "github.com/saiuppala9/ai-forex-trader/pkg/clickhouse"
	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

// CHSignalArchive is the durable consensus-record store in ClickHouse.
// Scalar columns carry the queryable fields; the full record, including
// the per-timeframe breakdown, rides along as a JSON payload column.
type CHSignalArchive struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSignalArchive(ch *pkgch.Client, l *applogger.Logger) *CHSignalArchive {
	return &CHSignalArchive{ch: ch, db: ch.DB(), l: l}
}

// ArchiveSchema are the idempotent DDL statements for the archive,
// intended for Client.InitSchema at startup.
func ArchiveSchema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS aiforex`,
		`CREATE TABLE IF NOT EXISTS aiforex.consensus_signals (
            ts           DateTime64(3, 'UTC'),
            symbol       LowCardinality(String),
            signal       LowCardinality(String),
            confidence   Float64,
            strength     LowCardinality(String),
            agreement    Float64,
            primary_tf   LowCardinality(String),
            entry        Float64,
            stop         Float64,
            target       Float64,
            rr           Float64,
            market_price Float64,
            payload      String
        ) ENGINE = MergeTree()
        PARTITION BY toYYYYMM(ts)
        ORDER BY (symbol, ts)`,
	}
}

func (a *CHSignalArchive) Store(ctx context.Context, rec *models.ConsensusRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal consensus record: %w", err)
	}

	const q = `
        INSERT INTO aiforex.consensus_signals
            (ts, symbol, signal, confidence, strength, agreement, primary_tf,
             entry, stop, target, rr, market_price, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = a.db.ExecContext(ctx, q,
		rec.Timestamp, rec.Symbol, string(rec.Signal), rec.Confidence,
		string(rec.Strength), rec.AgreementRatio, rec.PrimaryTimeframe,
		rec.EntryPrice, rec.StopLoss, rec.TakeProfit, rec.RiskRewardRatio,
		rec.MarketPrice, string(payload),
	)
	if err != nil {
		a.l.Error("clickhouse archive insert error",
			applogger.String("symbol", rec.Symbol),
			applogger.Error(err),
		)
		return fmt.Errorf("archive consensus: %w", err)
	}
	return nil
}

func (a *CHSignalArchive) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.ConsensusRecord, error) {
	start := time.Now()
	const q = `
        SELECT payload
        FROM aiforex.consensus_signals
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := a.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		a.l.Error("clickhouse archive query error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	out := make([]models.ConsensusRecord, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		var rec models.ConsensusRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			a.l.Warn("skipping corrupt archive payload",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive rows: %w", err)
	}

	a.l.Debug("clickhouse archive query ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (a *CHSignalArchive) Health(ctx context.Context) error {
	return a.ch.Health(ctx)
}

func (a *CHSignalArchive) Close() error {
	return a.ch.Close()
}
