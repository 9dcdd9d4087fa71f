package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

// RedisHistory keeps the per-symbol consensus history in a Redis list:
// LPUSH + LTRIM keeps the newest-first ordering and the depth bound in
// one round trip, so concurrent appends never interleave.
type RedisHistory struct {
	client *redis.Client
	depth  int64
	log    *applogger.Logger
}

type RedisHistoryOption func(*RedisHistory)

func WithRedisHistoryDepth(n int) RedisHistoryOption {
	return func(r *RedisHistory) {
		if n > 0 {
			r.depth = int64(n)
		}
	}
}

func NewRedisHistory(client *redis.Client, log *applogger.Logger, opts ...RedisHistoryOption) *RedisHistory {
	r := &RedisHistory{
		client: client,
		depth:  defaultHistoryDepth,
		log:    log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func historyKey(symbol string) string {
	return "aiforex:history:" + symbol
}

func (r *RedisHistory) Append(ctx context.Context, symbol string, rec *models.ConsensusRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal consensus record: %w", err)
	}

	key := historyKey(symbol)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, r.depth-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history %s: %w", symbol, err)
	}
	return nil
}

func (r *RedisHistory) Recent(ctx context.Context, symbol string, limit int) ([]models.ConsensusRecord, error) {
	if limit <= 0 {
		limit = int(r.depth)
	}
	raw, err := r.client.LRange(ctx, historyKey(symbol), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", symbol, err)
	}

	out := make([]models.ConsensusRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.ConsensusRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// A corrupt entry must not take the whole history down.
			r.log.Warn("skipping corrupt history entry",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisHistory) Close() error {
	return r.client.Close()
}
