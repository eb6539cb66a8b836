package strategy

import (
	"github.com/jcwang/marketscan/internal/contracts"
)

// DefaultBattery returns the standard scan battery: eight price
// strategies, plus the two institutional streak strategies when flow data
// is available for this run. Battery order is the leaderboard iteration
// order, so it must stay deterministic.
func DefaultBattery(includeFlow bool) []contracts.Strategy {
	battery := []contracts.Strategy{
		NewMACross(5, 20),
		NewMACross(5, 60),
		NewRSI(30, 70),
		NewMACD(),
		NewBollinger(),
		NewMomentumBreakout(20),
		NewVolumeBreakout(2.0),
		NewTurtle(20, 10),
	}

	if includeFlow {
		battery = append(battery,
			NewInstitutionalFollow(Foreign, 3, 100),
			NewInstitutionalFollow(Trust, 3, 10),
		)
	}

	return battery
}
