package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

func consensusAt(symbol string, i int) *models.ConsensusRecord {
	return &models.ConsensusRecord{
		Symbol:     symbol,
		Signal:     models.Buy,
		Confidence: float64(i),
		Timestamp:  time.Date(2025, 3, 1, 0, 0, i, 0, time.UTC),
	}
}

func TestMemoryHistoryNewestFirst(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := h.Recent(ctx, "EURUSD", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatalf("history not newest-first at %d: %v after %v", i, got[i].Timestamp, got[i-1].Timestamp)
		}
	}
	if got[0].Confidence != 4 {
		t.Fatalf("head should be the latest append, got confidence %v", got[0].Confidence)
	}
}

func TestMemoryHistoryDepthBound(t *testing.T) {
	h := NewMemoryHistory(WithHistoryDepth(10))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := h.Recent(ctx, "EURUSD", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("depth bound violated: %d entries", len(got))
	}
}

func TestMemoryHistorySymbolIsolation(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	if err := h.Append(ctx, "EURUSD", consensusAt("EURUSD", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := h.Recent(ctx, "GBPUSD", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("history leaked across symbols: %d entries", len(got))
	}
}

func TestMemoryHistoryConcurrentAppends(t *testing.T) {
	h := NewMemoryHistory(WithHistoryDepth(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sym := fmt.Sprintf("SYM%d", g%2)
				if err := h.Append(ctx, sym, consensusAt(sym, i)); err != nil {
					t.Errorf("append: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	a, _ := h.Recent(ctx, "SYM0", 0)
	b, _ := h.Recent(ctx, "SYM1", 0)
	if len(a)+len(b) != 400 {
		t.Fatalf("lost appends: %d + %d != 400", len(a), len(b))
	}
}
