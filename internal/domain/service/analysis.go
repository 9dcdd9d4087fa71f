package service

import (
	"context"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	"github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
)

// TimeframeAnalyzer produces one signal record for a (symbol, timeframe)
// pair. Implementations may be a local heuristic, a remote model service,
// or anything else honoring the SignalRecord contract; the consensus
// engine never looks inside.
type TimeframeAnalyzer interface {
	Analyze(ctx context.Context, symbol string, tf repository.Timeframe) (models.SignalRecord, error)
}
