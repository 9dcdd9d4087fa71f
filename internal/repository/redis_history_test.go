package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

func newTestRedisHistory(t *testing.T, opts ...RedisHistoryOption) *RedisHistory {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRedisHistory(client, log, opts...)
}

func TestRedisHistoryRoundTrip(t *testing.T) {
	h := newTestRedisHistory(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := h.Recent(ctx, "EURUSD", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
	if got[0].Confidence != 2 {
		t.Fatalf("newest-first violated: head confidence %v", got[0].Confidence)
	}
	if !got[0].Timestamp.Equal(consensusAt("EURUSD", 2).Timestamp) {
		t.Fatalf("timestamp lost in round trip: %v", got[0].Timestamp)
	}
}

func TestRedisHistoryDepthBound(t *testing.T) {
	h := newTestRedisHistory(t, WithRedisHistoryDepth(5))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := h.Recent(ctx, "EURUSD", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("depth bound violated: %d entries", len(got))
	}
	if got[0].Confidence != 11 {
		t.Fatalf("trim dropped the wrong end: head confidence %v", got[0].Confidence)
	}
}

func TestRedisHistoryLimit(t *testing.T) {
	h := newTestRedisHistory(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := h.Recent(ctx, "EURUSD", 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("limit not honored: %d entries", len(got))
	}
}

func TestRedisHistoryCorruptEntrySkipped(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewRedisHistory(client, log)
	ctx := context.Background()

	if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := mr.Lpush(historyKey("EURUSD"), "{not json"); err != nil {
		t.Fatalf("lpush garbage: %v", err)
	}

	got, err := h.Recent(ctx, "EURUSD", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("corrupt entry handling wrong: %d entries", len(got))
	}
}
