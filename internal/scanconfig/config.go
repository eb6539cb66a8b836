// Package scanconfig loads the scan battery definition from YAML. The
// file is the single source of truth for which strategies run and with
// which parameters; a hash of the loaded config ties persisted results
// back to the exact battery that produced them.
package scanconfig

import "time"

// Config is the full scan configuration.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Scan       Scan       `yaml:"scan" json:"scan"`
	Strategies Strategies `yaml:"strategies" json:"strategies"`
}

// Meta identifies the config revision.
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// Scan holds the universe gates and leaderboard bound.
type Scan struct {
	TopN      int     `yaml:"top_n" json:"top_n"`
	MinVolume float64 `yaml:"min_volume" json:"min_volume"`
	Workers   int     `yaml:"workers" json:"workers"`
}

// Strategies enables and parameterizes each battery member. A missing
// section means the strategy does not run. Battery order is fixed by
// the builder, not by the YAML layout.
type Strategies struct {
	MACross           []MACross       `yaml:"ma_cross" json:"ma_cross"`
	RSI               *RSI            `yaml:"rsi" json:"rsi"`
	MACD              bool            `yaml:"macd" json:"macd"`
	Bollinger         bool            `yaml:"bollinger" json:"bollinger"`
	MomentumLookbacks []int           `yaml:"momentum_lookbacks" json:"momentum_lookbacks"`
	VolumeSpike       *VolumeSpike    `yaml:"volume_spike" json:"volume_spike"`
	Turtle            *Turtle         `yaml:"turtle" json:"turtle"`
	Institutional     []Institutional `yaml:"institutional" json:"institutional"`
}

type MACross struct {
	Fast int `yaml:"fast" json:"fast"`
	Slow int `yaml:"slow" json:"slow"`
}

type RSI struct {
	Oversold   float64 `yaml:"oversold" json:"oversold"`
	Overbought float64 `yaml:"overbought" json:"overbought"`
}

type VolumeSpike struct {
	Multiple float64 `yaml:"multiple" json:"multiple"`
}

type Turtle struct {
	Entry int `yaml:"entry" json:"entry"`
	Exit  int `yaml:"exit" json:"exit"`
}

type Institutional struct {
	Actor     string  `yaml:"actor" json:"actor"` // foreign | trust
	Streak    int     `yaml:"streak" json:"streak"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// Snapshot records which config produced a scan, for reproducibility.
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	ConfigID   string    `json:"config_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Default mirrors the built-in battery so a scan without a config file
// behaves the same as one loaded from the shipped default YAML.
func Default() *Config {
	return &Config{
		Meta: Meta{ConfigID: "default", Version: "1"},
		Scan: Scan{TopN: 30, MinVolume: 500, Workers: 1},
		Strategies: Strategies{
			MACross:           []MACross{{Fast: 5, Slow: 20}, {Fast: 5, Slow: 60}},
			RSI:               &RSI{Oversold: 30, Overbought: 70},
			MACD:              true,
			Bollinger:         true,
			MomentumLookbacks: []int{20},
			VolumeSpike:       &VolumeSpike{Multiple: 2.0},
			Turtle:            &Turtle{Entry: 20, Exit: 10},
			Institutional: []Institutional{
				{Actor: "foreign", Streak: 3, Threshold: 100},
				{Actor: "trust", Streak: 3, Threshold: 10},
			},
		},
	}
}
