package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	pkgch "github.com/saiuppala9/ai-forex-trader/pkg/clickhouse"
)

// CHQuoteSink implements QuoteSink for ClickHouse: validated quotes from
// the collector land in a raw quotes table for later candle aggregation.
type CHQuoteSink struct {
	db    *sql.DB
	table string
}

func NewCHQuoteSink(ch *pkgch.Client, table string) *CHQuoteSink {
	if table == "" {
		table = "aiforex.quotes_raw"
	}
	return &CHQuoteSink{db: ch.DB(), table: table}
}

// QuoteSchema are the idempotent DDL statements for the raw quote table.
func QuoteSchema(table string) []string {
	if table == "" {
		table = "aiforex.quotes_raw"
	}
	return []string{
		`CREATE DATABASE IF NOT EXISTS aiforex`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ts     DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            price  Float64,
            bid    Float64,
            ask    Float64
        ) ENGINE = MergeTree()
        PARTITION BY toYYYYMMDD(ts)
        ORDER BY (symbol, ts)`, table),
	}
}

func (s *CHQuoteSink) Store(ctx context.Context, q *models.Quote) error {
	stmt := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, bid, ask) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, stmt,
		time.UnixMilli(q.Timestamp), q.Symbol, q.Price, q.Bid, q.Ask)
	return err
}

func (s *CHQuoteSink) StoreBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(quotes); start += chunkSize {
		end := start + chunkSize
		if end > len(quotes) {
			end = len(quotes)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, q := range quotes[start:end] {
			if q == nil || q.Symbol == "" || q.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, time.UnixMilli(q.Timestamp), q.Symbol, q.Price, q.Bid, q.Ask)
		}
		if len(values) == 0 {
			continue
		}
		stmt := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, bid, ask) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *CHQuoteSink) Close() error {
	return nil // pool owned by pkg client
}
