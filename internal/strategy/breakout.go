package strategy

import (
	"fmt"

	"github.com/jcwang/marketscan/internal/contracts"
)

// MomentumBreakout buys closes above the prior N-day high and exits when
// price falls back under the N-day average.
type MomentumBreakout struct {
	window int
}

// NewMomentumBreakout creates a price breakout strategy, e.g. window 20.
func NewMomentumBreakout(window int) *MomentumBreakout {
	return &MomentumBreakout{window: window}
}

func (m *MomentumBreakout) Name() string {
	return fmt.Sprintf("Momentum%d", m.window)
}

func (m *MomentumBreakout) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (m *MomentumBreakout) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := m.window + 1
	if series.Len() < need {
		return nil, errTooShort(m.Name(), need, series.Len())
	}

	prices := closes(series)
	signals := make([]contracts.Signal, len(prices))

	for i := m.window; i < len(prices); i++ {
		high := highest(series.Candles, i, m.window, func(c contracts.Candle) float64 { return c.High })

		switch {
		case prices[i] > high:
			signals[i] = contracts.Buy
		case prices[i] < sma(prices, i, m.window):
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}

// VolumeBreakout buys up-days whose volume is a multiple of the recent
// average; it exits below the 10-day average close.
type VolumeBreakout struct {
	multiple  float64
	volWindow int
	exitMA    int
}

// NewVolumeBreakout creates a volume surge strategy, e.g. multiple 2.0.
func NewVolumeBreakout(multiple float64) *VolumeBreakout {
	return &VolumeBreakout{multiple: multiple, volWindow: 20, exitMA: 10}
}

func (v *VolumeBreakout) Name() string {
	return "VolumeBreakout"
}

func (v *VolumeBreakout) Kind() contracts.StrategyKind {
	return contracts.KindPrice
}

func (v *VolumeBreakout) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	need := v.volWindow + 1
	if series.Len() < need {
		return nil, errTooShort(v.Name(), need, series.Len())
	}

	prices := closes(series)
	volumes := make([]float64, len(series.Candles))
	for i, c := range series.Candles {
		volumes[i] = c.Volume
	}

	signals := make([]contracts.Signal, len(prices))
	for i := v.volWindow; i < len(prices); i++ {
		avgVol := sma(volumes, i-1, v.volWindow)

		switch {
		case volumes[i] > v.multiple*avgVol && prices[i] > prices[i-1]:
			signals[i] = contracts.Buy
		case prices[i] < sma(prices, i, v.exitMA):
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}
