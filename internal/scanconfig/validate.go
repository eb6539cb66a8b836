package scanconfig

import "fmt"

// ValidationError aborts the scan before it starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.ConfigID == "" {
		return ValidationError{"meta.config_id", "required"}
	}

	if cfg.Scan.TopN <= 0 {
		return ValidationError{"scan.top_n", "must be > 0"}
	}
	if cfg.Scan.MinVolume < 0 {
		return ValidationError{"scan.min_volume", "must be >= 0"}
	}
	if cfg.Scan.Workers < 0 {
		return ValidationError{"scan.workers", "must be >= 0"}
	}

	for i, m := range cfg.Strategies.MACross {
		if m.Fast <= 0 || m.Slow <= 0 {
			return ValidationError{fmt.Sprintf("strategies.ma_cross[%d]", i), "periods must be > 0"}
		}
		if m.Fast >= m.Slow {
			return ValidationError{fmt.Sprintf("strategies.ma_cross[%d]", i), "fast must be < slow"}
		}
	}

	if r := cfg.Strategies.RSI; r != nil {
		if r.Oversold <= 0 || r.Overbought >= 100 {
			return ValidationError{"strategies.rsi", "thresholds must be in (0, 100)"}
		}
		if r.Oversold >= r.Overbought {
			return ValidationError{"strategies.rsi", "oversold must be < overbought"}
		}
	}

	for i, lb := range cfg.Strategies.MomentumLookbacks {
		if lb <= 0 {
			return ValidationError{fmt.Sprintf("strategies.momentum_lookbacks[%d]", i), "must be > 0"}
		}
	}

	if v := cfg.Strategies.VolumeSpike; v != nil && v.Multiple <= 1 {
		return ValidationError{"strategies.volume_spike.multiple", "must be > 1"}
	}

	if t := cfg.Strategies.Turtle; t != nil {
		if t.Entry <= 0 || t.Exit <= 0 {
			return ValidationError{"strategies.turtle", "windows must be > 0"}
		}
	}

	for i, inst := range cfg.Strategies.Institutional {
		if inst.Actor != "foreign" && inst.Actor != "trust" {
			return ValidationError{fmt.Sprintf("strategies.institutional[%d].actor", i), fmt.Sprintf("unknown actor %q", inst.Actor)}
		}
		if inst.Streak <= 0 {
			return ValidationError{fmt.Sprintf("strategies.institutional[%d].streak", i), "must be > 0"}
		}
		if inst.Threshold < 0 {
			return ValidationError{fmt.Sprintf("strategies.institutional[%d].threshold", i), "must be >= 0"}
		}
	}

	return nil
}
