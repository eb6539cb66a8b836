package scanconfig

import (
	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/strategy"
)

// Battery builds the strategy battery a config describes, in a fixed
// order so leaderboard iteration stays deterministic across runs.
// Flow strategies are appended only when includeFlow is set.
func Battery(cfg *Config, includeFlow bool) []contracts.Strategy {
	var battery []contracts.Strategy

	for _, m := range cfg.Strategies.MACross {
		battery = append(battery, strategy.NewMACross(m.Fast, m.Slow))
	}
	if r := cfg.Strategies.RSI; r != nil {
		battery = append(battery, strategy.NewRSI(r.Oversold, r.Overbought))
	}
	if cfg.Strategies.MACD {
		battery = append(battery, strategy.NewMACD())
	}
	if cfg.Strategies.Bollinger {
		battery = append(battery, strategy.NewBollinger())
	}
	for _, lb := range cfg.Strategies.MomentumLookbacks {
		battery = append(battery, strategy.NewMomentumBreakout(lb))
	}
	if v := cfg.Strategies.VolumeSpike; v != nil {
		battery = append(battery, strategy.NewVolumeBreakout(v.Multiple))
	}
	if t := cfg.Strategies.Turtle; t != nil {
		battery = append(battery, strategy.NewTurtle(t.Entry, t.Exit))
	}

	if includeFlow {
		for _, inst := range cfg.Strategies.Institutional {
			investor := strategy.Foreign
			if inst.Actor == "trust" {
				investor = strategy.Trust
			}
			battery = append(battery, strategy.NewInstitutionalFollow(investor, inst.Streak, inst.Threshold))
		}
	}

	return battery
}
