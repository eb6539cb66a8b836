package strategy

import (
	"github.com/jcwang/marketscan/internal/contracts"
)

// MACD trades crossings of the MACD line against its signal line.
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD creates a MACD cross strategy with the conventional (12, 26, 9)
// parameters.
func NewMACD() *MACD {
	return &MACD{fast: 12, slow: 26, signal: 9}
}

func (m *MACD) Name() string {
	return "MACD"
}

func (m *MACD) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (m *MACD) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := m.slow + m.signal
	if series.Len() < need {
		return nil, errTooShort(m.Name(), need, series.Len())
	}

	prices := closes(series)
	emaFast := emaSeries(prices, m.fast)
	emaSlow := emaSeries(prices, m.slow)

	macd := make([]float64, len(prices))
	for i := range prices {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := emaSeries(macd, m.signal)

	signals := make([]contracts.Signal, len(prices))
	for i := need; i < len(prices); i++ {
		prevDiff := macd[i-1] - signalLine[i-1]
		diff := macd[i] - signalLine[i]

		switch {
		case prevDiff <= 0 && diff > 0:
			signals[i] = contracts.Buy
		case prevDiff >= 0 && diff < 0:
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}
