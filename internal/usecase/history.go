package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
)

// HistoryUseCase reads consensus history. Recent reads come from the
// fast store; ranged reads go to the durable archive.
type HistoryUseCase struct {
	store   domrepo.HistoryStore
	archive domrepo.SignalArchive
}

func NewHistoryUseCase(store domrepo.HistoryStore, archive domrepo.SignalArchive) *HistoryUseCase {
	return &HistoryUseCase{store: store, archive: archive}
}

// Recent returns the latest consensus records for a symbol, newest first.
func (uc *HistoryUseCase) Recent(ctx context.Context, symbol string, limit int) ([]models.ConsensusRecord, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	return uc.store.Recent(ctx, symbol, limit)
}

// Range returns archived consensus records within [from, to].
func (uc *HistoryUseCase) Range(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.ConsensusRecord, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if uc.archive == nil {
		return nil, fmt.Errorf("archive not configured")
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.archive.Query(ctx, symbol, from, to, limit)
}
