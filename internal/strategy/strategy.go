// Package strategy implements the fixed battery of signal generators the
// scanner evaluates every instrument against. Each strategy emits one
// signal per daily bar; position handling and metrics live in the
// backtest engine.
package strategy

import (
	"fmt"
	"math"

	"github.com/jcwang/marketscan/internal/contracts"
)

// errTooShort signals that an instrument's history cannot support the
// strategy's lookback. The orchestrator treats it as a per-pair skip.
func errTooShort(name string, need, got int) error {
	return fmt.Errorf("%s: need %d bars, got %d", name, need, got)
}

// closes extracts the close column.
func closes(s *contracts.Series) []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// sma returns the simple moving average of vals[i-period+1 .. i].
// Caller guarantees i >= period-1.
func sma(vals []float64, i, period int) float64 {
	var sum float64
	for j := i - period + 1; j <= i; j++ {
		sum += vals[j]
	}
	return sum / float64(period)
}

// stddev returns the population standard deviation over the same window
// as sma.
func stddev(vals []float64, i, period int) float64 {
	mean := sma(vals, i, period)
	var variance float64
	for j := i - period + 1; j <= i; j++ {
		diff := vals[j] - mean
		variance += diff * diff
	}
	variance /= float64(period)
	return math.Sqrt(variance)
}

// emaSeries computes an exponential moving average over the whole slice,
// seeded with the first value.
func emaSeries(vals []float64, period int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1.0)
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = vals[i]*k + out[i-1]*(1-k)
	}
	return out
}

// highest returns the maximum of f over candles[i-period .. i-1], the
// lookback window strictly before bar i.
func highest(candles []contracts.Candle, i, period int, f func(contracts.Candle) float64) float64 {
	best := math.Inf(-1)
	for j := i - period; j < i; j++ {
		if v := f(candles[j]); v > best {
			best = v
		}
	}
	return best
}

// lowest mirrors highest.
func lowest(candles []contracts.Candle, i, period int, f func(contracts.Candle) float64) float64 {
	best := math.Inf(1)
	for j := i - period; j < i; j++ {
		if v := f(candles[j]); v < best {
			best = v
		}
	}
	return best
}
