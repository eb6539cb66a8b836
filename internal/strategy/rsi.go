package strategy

import (
	"github.com/jcwang/marketscan/internal/contracts"
)

const rsiPeriod = 14

// RSI buys in oversold territory and sells when overbought.
type RSI struct {
	oversold   float64
	overbought float64
}

// NewRSI creates an RSI mean-reversion strategy, e.g. NewRSI(30, 70).
func NewRSI(oversold, overbought float64) *RSI {
	return &RSI{oversold: oversold, overbought: overbought}
}

func (r *RSI) Name() string {
	return "RSI"
}

func (r *RSI) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (r *RSI) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := rsiPeriod + 2
	if series.Len() < need {
		return nil, errTooShort(r.Name(), need, series.Len())
	}

	prices := closes(series)
	rsi := rsiSeries(prices, rsiPeriod)
	signals := make([]contracts.Signal, len(prices))

	for i := rsiPeriod + 1; i < len(prices); i++ {
		switch {
		case rsi[i] < r.oversold:
			signals[i] = contracts.Buy
		case rsi[i] > r.overbought:
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}

// rsiSeries computes a Wilder-smoothed RSI. Values before the first full
// period are left at the neutral 50.
func rsiSeries(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = 50
	}
	if len(prices) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
