package features

import (
	"sort"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
)

// Closes extracts the close series from candles.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}

// SMA computes the simple moving average of the last window values.
// Returns 0 if there is insufficient data.
func SMA(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return 0
	}
	sum := 0.0
	for i := len(values) - window; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(window)
}

// EMA computes the exponential moving average over the whole series with
// the standard 2/(window+1) smoothing, seeded by the SMA of the first
// window values. Returns 0 if there is insufficient data.
func EMA(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return 0
	}
	k := 2.0 / float64(window+1)
	ema := SMA(values[:window], window)
	for i := window; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
	}
	return ema
}

// RSI computes the Wilder relative strength index over the last
// window+1 values. Returns 50 (no signal) if there is insufficient data.
func RSI(values []float64, window int) float64 {
	if window <= 0 || len(values) < window+1 {
		return 50
	}
	var gains, losses float64
	for i := len(values) - window; i < len(values); i++ {
		diff := values[i] - values[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

// SupportResistance estimates support as the mean of the three lowest
// lows and resistance as the mean of the three highest highs over the
// last window candles.
func SupportResistance(candles []models.Candle, window int) (support, resistance float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	if window <= 0 || window > len(candles) {
		window = len(candles)
	}
	recent := candles[len(candles)-window:]
	lows := make([]float64, len(recent))
	highs := make([]float64, len(recent))
	for i := range recent {
		lows[i] = recent[i].Low
		highs[i] = recent[i].High
	}
	sort.Float64s(lows)
	sort.Sort(sort.Reverse(sort.Float64Slice(highs)))

	n := 3
	if n > len(recent) {
		n = len(recent)
	}
	for i := 0; i < n; i++ {
		support += lows[i]
		resistance += highs[i]
	}
	return support / float64(n), resistance / float64(n)
}
