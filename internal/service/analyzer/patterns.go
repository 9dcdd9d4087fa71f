package analyzer

import (
	"math"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

// Pattern confidence weights. Multi-candle continuation patterns carry
// more weight than single-candle reversals.
const (
	hammerWeight    = 0.7
	hangingWeight   = 0.7
	engulfingWeight = 0.6
	soldiersWeight  = 0.9
	crowsWeight     = 0.9
)

type patternHit struct {
	match  models.PatternMatch
	weight float64
}

func body(c models.Candle) float64   { return math.Abs(c.Close - c.Open) }
func isBull(c models.Candle) bool    { return c.Close > c.Open }
func isBear(c models.Candle) bool    { return c.Close < c.Open }
func upperWick(c models.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}
func lowerWick(c models.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// detectPatterns scans the tail of the candle series for the candlestick
// formations the analyzer votes on. Only the most recent occurrence of
// each pattern matters.
func detectPatterns(candles []models.Candle) []patternHit {
	var hits []patternHit
	n := len(candles)
	if n == 0 {
		return hits
	}

	last := candles[n-1]

	// Hammer / hanging man: small body, long lower shadow, little upper
	// shadow. Direction depends on the preceding trend.
	if b := body(last); b > 0 && lowerWick(last) >= 2*b && upperWick(last) <= b {
		if n >= 2 && candles[n-2].Close > last.Open {
			hits = append(hits, patternHit{
				match:  models.PatternMatch{Name: "hanging_man", Direction: models.Sell},
				weight: hangingWeight,
			})
		} else {
			hits = append(hits, patternHit{
				match:  models.PatternMatch{Name: "hammer", Direction: models.Buy},
				weight: hammerWeight,
			})
		}
	}

	// Engulfing: the last body completely covers the previous body with
	// opposite color.
	if n >= 2 {
		prev := candles[n-2]
		if isBull(last) && isBear(prev) && last.Close >= prev.Open && last.Open <= prev.Close {
			hits = append(hits, patternHit{
				match:  models.PatternMatch{Name: "bullish_engulfing", Direction: models.Buy},
				weight: engulfingWeight,
			})
		}
		if isBear(last) && isBull(prev) && last.Open >= prev.Close && last.Close <= prev.Open {
			hits = append(hits, patternHit{
				match:  models.PatternMatch{Name: "bearish_engulfing", Direction: models.Sell},
				weight: engulfingWeight,
			})
		}
	}

	// Three white soldiers / three black crows: three consecutive candles
	// of the same color with monotonically advancing closes.
	if n >= 3 {
		a, b2, c := candles[n-3], candles[n-2], candles[n-1]
		if isBull(a) && isBull(b2) && isBull(c) && b2.Close > a.Close && c.Close > b2.Close {
			hits = append(hits, patternHit{
				match:  models.PatternMatch{Name: "three_white_soldiers", Direction: models.Buy},
				weight: soldiersWeight,
			})
		}
		if isBear(a) && isBear(b2) && isBear(c) && b2.Close < a.Close && c.Close < b2.Close {
			hits = append(hits, patternHit{
				match:  models.PatternMatch{Name: "three_black_crows", Direction: models.Sell},
				weight: crowsWeight,
			})
		}
	}

	return hits
}
