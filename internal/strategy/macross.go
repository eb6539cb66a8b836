package strategy

import (
	"fmt"

	"github.com/jcwang/marketscan/internal/contracts"
)

// MACross buys when the fast SMA crosses above the slow SMA and sells on
// the opposite cross.
type MACross struct {
	fast int
	slow int
}

// NewMACross creates a moving-average cross strategy, e.g. NewMACross(5, 20).
func NewMACross(fast, slow int) *MACross {
	return &MACross{fast: fast, slow: slow}
}

func (m *MACross) Name() string {
	return fmt.Sprintf("MA%dx%d", m.fast, m.slow)
}

func (m *MACross) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (m *MACross) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := m.slow + 1
	if series.Len() < need {
		return nil, errTooShort(m.Name(), need, series.Len())
	}

	prices := closes(series)
	signals := make([]contracts.Signal, len(prices))

	for i := m.slow; i < len(prices); i++ {
		fastPrev := sma(prices, i-1, m.fast)
		slowPrev := sma(prices, i-1, m.slow)
		fastNow := sma(prices, i, m.fast)
		slowNow := sma(prices, i, m.slow)

		switch {
		case fastPrev <= slowPrev && fastNow > slowNow:
			signals[i] = contracts.Buy
		case fastPrev >= slowPrev && fastNow < slowNow:
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}
