package strategy

import (
	"github.com/jcwang/marketscan/internal/contracts"
)

// Bollinger buys touches of the lower band and sells touches of the
// upper band.
type Bollinger struct {
	period int
	width  float64
}

// NewBollinger creates a Bollinger band mean-reversion strategy with the
// usual 20-day window and 2-sigma bands.
func NewBollinger() *Bollinger {
	return &Bollinger{period: 20, width: 2.0}
}

func (b *Bollinger) Name() string {
	return "Bollinger"
}

func (b *Bollinger) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (b *Bollinger) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := b.period + 1
	if series.Len() < need {
		return nil, errTooShort(b.Name(), need, series.Len())
	}

	prices := closes(series)
	signals := make([]contracts.Signal, len(prices))

	for i := b.period; i < len(prices); i++ {
		mid := sma(prices, i, b.period)
		sd := stddev(prices, i, b.period)

		switch {
		case prices[i] < mid-b.width*sd:
			signals[i] = contracts.Buy
		case prices[i] > mid+b.width*sd:
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}
