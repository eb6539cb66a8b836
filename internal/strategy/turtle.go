package strategy

import (
	"github.com/jcwang/marketscan/internal/contracts"
)

// Turtle is the classic channel breakout: buy a new entry-window high,
// sell a new exit-window low.
type Turtle struct {
	entry int
	exit  int
}

// NewTurtle creates a turtle channel strategy, e.g. NewTurtle(20, 10).
func NewTurtle(entry, exit int) *Turtle {
	return &Turtle{entry: entry, exit: exit}
}

func (t *Turtle) Name() string {
	return "Turtle"
}

func (t *Turtle) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (t *Turtle) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := t.entry + 1
	if series.Len() < need {
		return nil, errTooShort(t.Name(), need, series.Len())
	}

	prices := closes(series)
	signals := make([]contracts.Signal, len(prices))

	for i := t.entry; i < len(prices); i++ {
		entryHigh := highest(series.Candles, i, t.entry, func(c contracts.Candle) float64 { return c.High })
		exitLow := lowest(series.Candles, i, t.exit, func(c contracts.Candle) float64 { return c.Low })

		switch {
		case prices[i] > entryHigh:
			signals[i] = contracts.Buy
		case prices[i] < exitLow:
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}
