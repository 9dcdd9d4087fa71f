package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	"github.com/saiuppala9/ai-forex-trader/internal/repository"
)

type stubArchive struct {
	symbol string
	from   time.Time
	to     time.Time
	limit  int
	rows   []models.ConsensusRecord
}

func (s *stubArchive) Store(context.Context, *models.ConsensusRecord) error { return nil }

func (s *stubArchive) Query(_ context.Context, symbol string, from, to time.Time, limit int) ([]models.ConsensusRecord, error) {
	s.symbol = symbol
	s.from = from
	s.to = to
	s.limit = limit
	return s.rows, nil
}

func (s *stubArchive) Health(context.Context) error { return nil }
func (s *stubArchive) Close() error                 { return nil }

func TestHistoryRecentReadsFastStore(t *testing.T) {
	store := repository.NewMemoryHistory()
	rec := &models.ConsensusRecord{Symbol: "EURUSD", Signal: models.Buy}
	if err := store.Append(context.Background(), "EURUSD", rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	uc := NewHistoryUseCase(store, &stubArchive{})
	got, err := uc.Recent(context.Background(), "EURUSD", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].Signal != models.Buy {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestHistoryRangeQueriesArchive(t *testing.T) {
	archive := &stubArchive{rows: []models.ConsensusRecord{{Symbol: "EURUSD", Signal: models.Sell}}}
	uc := NewHistoryUseCase(repository.NewMemoryHistory(), archive)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	got, err := uc.Range(context.Background(), "EURUSD", from, to, 50)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 1 || got[0].Signal != models.Sell {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if archive.symbol != "EURUSD" || !archive.from.Equal(from) || !archive.to.Equal(to) || archive.limit != 50 {
		t.Fatalf("query args not passed through: %s %v %v %d", archive.symbol, archive.from, archive.to, archive.limit)
	}
}

func TestHistoryRangeDefaultsWindow(t *testing.T) {
	archive := &stubArchive{}
	uc := NewHistoryUseCase(repository.NewMemoryHistory(), archive)

	before := time.Now().UTC()
	if _, err := uc.Range(context.Background(), "EURUSD", time.Time{}, time.Time{}, 0); err != nil {
		t.Fatalf("range: %v", err)
	}
	if archive.to.Before(before) {
		t.Fatalf("default to should be now-ish, got %v", archive.to)
	}
	if got := archive.to.Sub(archive.from); got != 24*time.Hour {
		t.Fatalf("default window should be 24h, got %v", got)
	}
	if archive.limit != 100 {
		t.Fatalf("default limit should be 100, got %d", archive.limit)
	}
}

func TestHistoryRangeRequiresSymbol(t *testing.T) {
	uc := NewHistoryUseCase(repository.NewMemoryHistory(), &stubArchive{})
	if _, err := uc.Range(context.Background(), "", time.Time{}, time.Time{}, 10); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestHistoryRangeWithoutArchive(t *testing.T) {
	uc := NewHistoryUseCase(repository.NewMemoryHistory(), nil)
	if _, err := uc.Range(context.Background(), "EURUSD", time.Time{}, time.Time{}, 10); err == nil {
		t.Fatalf("expected error when archive is not configured")
	}
}
