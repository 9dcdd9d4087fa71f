package repository

import (
	"context"
	"sync"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

const defaultHistoryDepth = 200

// MemoryHistory is the in-process fallback HistoryStore: per-symbol
// bounded slices, newest first. Appends are serialized by the mutex so
// Recent never observes a torn ordering.
type MemoryHistory struct {
	mu       sync.RWMutex
	bySymbol map[string][]models.ConsensusRecord
	depth    int
}

type MemoryHistoryOption func(*MemoryHistory)

func WithHistoryDepth(n int) MemoryHistoryOption {
	return func(m *MemoryHistory) {
		if n > 0 {
			m.depth = n
		}
	}
}

func NewMemoryHistory(opts ...MemoryHistoryOption) *MemoryHistory {
	m := &MemoryHistory{
		bySymbol: make(map[string][]models.ConsensusRecord),
		depth:    defaultHistoryDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryHistory) Append(_ context.Context, symbol string, rec *models.ConsensusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.bySymbol[symbol]
	list = append([]models.ConsensusRecord{*rec}, list...)
	if len(list) > m.depth {
		list = list[:m.depth]
	}
	m.bySymbol[symbol] = list
	return nil
}

func (m *MemoryHistory) Recent(_ context.Context, symbol string, limit int) ([]models.ConsensusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.bySymbol[symbol]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]models.ConsensusRecord, limit)
	copy(out, list[:limit])
	return out, nil
}

func (m *MemoryHistory) Close() error {
	return nil
}
