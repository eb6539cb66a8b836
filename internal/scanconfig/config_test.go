package scanconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/strategy"
)

const validYAML = `
meta:
  config_id: scan-default
  version: "1"
scan:
  top_n: 30
  min_volume: 500
  workers: 4
strategies:
  ma_cross:
    - fast: 5
      slow: 20
    - fast: 5
      slow: 60
  rsi:
    oversold: 30
    overbought: 70
  macd: true
  bollinger: true
  momentum_lookbacks: [20]
  volume_spike:
    multiple: 2.0
  turtle:
    entry: 20
    exit: 10
  institutional:
    - actor: foreign
      streak: 3
      threshold: 100
    - actor: trust
      streak: 3
      threshold: 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, raw, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "scan-default", cfg.Meta.ConfigID)
	assert.Equal(t, 30, cfg.Scan.TopN)
	assert.Equal(t, 4, cfg.Scan.Workers)
	require.Len(t, cfg.Strategies.MACross, 2)
	assert.Equal(t, 60, cfg.Strategies.MACross[1].Slow)
	require.Len(t, cfg.Strategies.Institutional, 2)
	assert.Equal(t, "trust", cfg.Strategies.Institutional[1].Actor)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, _, err := Load(writeConfig(t, `
meta:
  config_id: x
scan:
  top_n: 30
  min_volum: 500
`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing config id", func(c *Config) { c.Meta.ConfigID = "" }, "meta.config_id"},
		{"zero top n", func(c *Config) { c.Scan.TopN = 0 }, "scan.top_n"},
		{"negative min volume", func(c *Config) { c.Scan.MinVolume = -1 }, "scan.min_volume"},
		{"inverted ma cross", func(c *Config) { c.Strategies.MACross[0] = MACross{Fast: 20, Slow: 5} }, "strategies.ma_cross[0]"},
		{"inverted rsi", func(c *Config) { c.Strategies.RSI = &RSI{Oversold: 70, Overbought: 30} }, "strategies.rsi"},
		{"bad momentum lookback", func(c *Config) { c.Strategies.MomentumLookbacks = []int{0} }, "strategies.momentum_lookbacks[0]"},
		{"weak volume spike", func(c *Config) { c.Strategies.VolumeSpike = &VolumeSpike{Multiple: 1.0} }, "strategies.volume_spike.multiple"},
		{"zero turtle window", func(c *Config) { c.Strategies.Turtle = &Turtle{Entry: 0, Exit: 10} }, "strategies.turtle"},
		{"unknown actor", func(c *Config) { c.Strategies.Institutional[0].Actor = "retail" }, "strategies.institutional[0].actor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestHashIsStable(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	changed := Default()
	changed.Scan.TopN = 10
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestBatteryMatchesBuiltinDefault(t *testing.T) {
	fromConfig := Battery(Default(), true)
	builtin := strategy.DefaultBattery(true)

	require.Len(t, fromConfig, len(builtin))
	for i := range builtin {
		assert.Equal(t, builtin[i].Name(), fromConfig[i].Name())
		assert.Equal(t, builtin[i].Kind(), fromConfig[i].Kind())
	}
}

func TestBatteryWithoutFlow(t *testing.T) {
	battery := Battery(Default(), false)
	for _, s := range battery {
		assert.Equal(t, contracts.KindPrice, s.Kind())
	}
}

func TestSnapshot(t *testing.T) {
	cfg, raw, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	snap, err := NewSnapshot(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, "scan-default", snap.ConfigID)
	assert.Equal(t, string(raw), snap.ConfigYAML)
	assert.Len(t, snap.ConfigHash, 64)
	assert.False(t, snap.CreatedAt.IsZero())
}
