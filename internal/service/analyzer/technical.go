package analyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	"github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/service/features"
	"github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

const (
	defaultCandleCount = 60
	maWindow           = 20
	rsiWindow          = 14
	srWindow           = 20

	rsiOverbought = 70.0
	rsiOversold   = 30.0

	// Fraction of the distance to the nearest level used as the target,
	// leaving headroom before support/resistance.
	levelCaptureRatio = 0.8
)

// Technical is a heuristic analyzer over stored OHLCV candles: moving
// averages decide the trend, RSI and candlestick patterns vote on it,
// support/resistance supply the price levels.
type Technical struct {
	candles     repository.CandleStore
	log         *logger.Logger
	candleCount int
}

type TechnicalOption func(*Technical)

func WithCandleCount(n int) TechnicalOption {
	return func(t *Technical) {
		if n > 0 {
			t.candleCount = n
		}
	}
}

func NewTechnical(candles repository.CandleStore, log *logger.Logger, opts ...TechnicalOption) *Technical {
	t := &Technical{
		candles:     candles,
		log:         log,
		candleCount: defaultCandleCount,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Analyze implements service.TimeframeAnalyzer.
func (t *Technical) Analyze(ctx context.Context, symbol string, tf repository.Timeframe) (models.SignalRecord, error) {
	candles, err := t.candles.GetLatestNCandles(ctx, symbol, t.candleCount, tf)
	if err != nil {
		return models.SignalRecord{}, fmt.Errorf("load candles %s/%s: %w", symbol, tf, err)
	}
	if len(candles) < maWindow+1 {
		return models.SignalRecord{}, fmt.Errorf("insufficient candles for %s/%s: have %d, need %d",
			symbol, tf, len(candles), maWindow+1)
	}

	closes := features.Closes(candles)
	price := closes[len(closes)-1]
	sma := features.SMA(closes, maWindow)
	ema := features.EMA(closes, maWindow)
	rsi := features.RSI(closes, rsiWindow)
	support, resistance := features.SupportResistance(candles, srWindow)

	var bullScore, bearScore float64

	// Trend vote from the moving averages.
	switch {
	case price > sma && price > ema:
		bullScore += 1.0
	case price < sma && price < ema:
		bearScore += 1.0
	}

	// Momentum vote: extreme RSI argues for a reversal.
	rsiSignal := models.Neutral
	switch {
	case rsi >= rsiOverbought:
		bearScore += 0.8
		rsiSignal = models.Sell
	case rsi <= rsiOversold:
		bullScore += 0.8
		rsiSignal = models.Buy
	}

	hits := detectPatterns(candles)
	patterns := make([]models.PatternMatch, 0, len(hits))
	for _, h := range hits {
		patterns = append(patterns, h.match)
		switch h.match.Direction {
		case models.Buy:
			bullScore += h.weight
		case models.Sell:
			bearScore += h.weight
		}
	}

	signal := models.Neutral
	switch {
	case bullScore > bearScore:
		signal = models.Buy
	case bearScore > bullScore:
		signal = models.Sell
	}

	rec := models.SignalRecord{
		Symbol:     symbol,
		Timeframe:  string(tf),
		Signal:     signal,
		Confidence: confidenceFrom(bullScore, bearScore),
		Indicators: []models.IndicatorReading{
			{Name: "sma_20", Value: sma, Signal: trendSignal(price, sma)},
			{Name: "ema_20", Value: ema, Signal: trendSignal(price, ema)},
			{Name: "rsi_14", Value: rsi, Signal: rsiSignal},
		},
		Patterns:  patterns,
		Timestamp: candles[len(candles)-1].Bucket,
	}

	// Levels only for directional signals; the entry anchors at the last
	// close and the target captures most of the run to the nearest level.
	switch signal {
	case models.Buy:
		rec.EntryPrice = price
		rec.StopLoss = support
		rec.TakeProfit = price + (resistance-price)*levelCaptureRatio
	case models.Sell:
		rec.EntryPrice = price
		rec.StopLoss = resistance
		rec.TakeProfit = price - (price-support)*levelCaptureRatio
	}

	t.log.Debug("technical analysis complete",
		logger.String("symbol", symbol),
		logger.String("timeframe", string(tf)),
		logger.String("signal", string(signal)),
		logger.Any("confidence", rec.Confidence),
	)
	return rec, nil
}

// confidenceFrom maps the score margin onto [50,95]: an even vote is a
// coin flip, a runaway vote approaches but never claims certainty.
func confidenceFrom(bull, bear float64) float64 {
	total := bull + bear
	if total == 0 {
		return 50
	}
	margin := math.Abs(bull-bear) / total
	return math.Round(50 + margin*45)
}

func trendSignal(price, ma float64) models.Direction {
	switch {
	case price > ma:
		return models.Buy
	case price < ma:
		return models.Sell
	default:
		return models.Neutral
	}
}
