package strategy

import (
	"fmt"

	"github.com/jcwang/marketscan/internal/contracts"
)

// Investor selects which institutional column a flow strategy follows.
type Investor string

const (
	Foreign Investor = "foreign"
	Trust   Investor = "trust"
)

// InstitutionalFollow buys after a streak of days of institutional net
// buying above a threshold and sells on the mirrored selling streak.
// It requires the institutional-merged series.
type InstitutionalFollow struct {
	investor  Investor
	streak    int
	threshold float64 // lots per day
}

// NewInstitutionalFollow creates a flow-following strategy,
// e.g. NewInstitutionalFollow(Foreign, 3, 100).
func NewInstitutionalFollow(investor Investor, streak int, threshold float64) *InstitutionalFollow {
	return &InstitutionalFollow{investor: investor, streak: streak, threshold: threshold}
}

func (f *InstitutionalFollow) Name() string {
	switch f.investor {
	case Trust:
		return "TrustStreak"
	default:
		return "ForeignStreak"
	}
}

func (f *InstitutionalFollow) Kind() contracts.StrategyKind {
	return contracts.KindFlow
}

func (f *InstitutionalFollow) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	if !series.HasFlows() {
		return nil, fmt.Errorf("%s: %w", f.Name(), contracts.ErrDataUnavailable)
	}
	if len(series.Flows) != len(series.Candles) {
		return nil, fmt.Errorf("%s: flows/candles misaligned (%d vs %d)",
			f.Name(), len(series.Flows), len(series.Candles))
	}
	need := f.streak + 1
	if series.Len() < need {
		return nil, errTooShort(f.Name(), need, series.Len())
	}

	signals := make([]contracts.Signal, len(series.Candles))

	for i := f.streak - 1; i < len(series.Flows); i++ {
		buying, selling := true, true
		for j := i - f.streak + 1; j <= i; j++ {
			net := f.net(series.Flows[j])
			if net < f.threshold {
				buying = false
			}
			if net > -f.threshold {
				selling = false
			}
		}

		switch {
		case buying:
			signals[i] = contracts.Buy
		case selling:
			signals[i] = contracts.Sell
		}
	}

	return signals, nil
}

func (f *InstitutionalFollow) net(flow contracts.InstitutionalFlow) float64 {
	if f.investor == Trust {
		return flow.TrustNet
	}
	return flow.ForeignNet
}
