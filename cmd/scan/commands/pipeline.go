package commands

import (
	"fmt"
	"os"

	"github.com/jcwang/marketscan/internal/backtest"
	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/marketdata"
	"github.com/jcwang/marketscan/internal/scan"
	"github.com/jcwang/marketscan/internal/scanconfig"
	"github.com/jcwang/marketscan/pkg/config"
	"github.com/jcwang/marketscan/pkg/logger"
)

// newLogger builds the command logger, honoring --verbose.
func newLogger(cfg *config.Config) *logger.Logger {
	if verbose {
		cfg.LogLevel = "debug"
	}
	return logger.New(cfg)
}

// loadBattery resolves the strategy battery: the --battery YAML when
// given, the built-in default otherwise.
func loadBattery(includeFlow bool) ([]contracts.Strategy, *scanconfig.Config, error) {
	if batteryFile == "" {
		cfg := scanconfig.Default()
		return scanconfig.Battery(cfg, includeFlow), cfg, nil
	}

	cfg, _, err := scanconfig.Load(batteryFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load battery config: %w", err)
	}
	return scanconfig.Battery(cfg, includeFlow), cfg, nil
}

// flowLoader returns the institutional loader when the flow file
// exists, nil otherwise. A nil loader drops flow strategies from the
// battery for the run.
func flowLoader(cfg *config.Config, log *logger.Logger) contracts.InstitutionalLoader {
	if cfg.FlowFile == "" {
		return nil
	}
	if _, err := os.Stat(cfg.FlowFile); err != nil {
		log.WithField("path", cfg.FlowFile).Warn("Flow file not found; flow strategies disabled")
		return nil
	}
	return marketdata.NewFlowLoader(cfg.FlowFile, log)
}

// buildOrchestrator wires the scan pipeline from app config and scan
// options.
func buildOrchestrator(cfg *config.Config, opts scan.Options, log *logger.Logger) (*scan.Orchestrator, error) {
	institutional := flowLoader(cfg, log)

	battery, _, err := loadBattery(institutional != nil)
	if err != nil {
		return nil, err
	}

	universe := marketdata.NewDirLoader(cfg.DataDir, log)
	engine := backtest.NewEngine(log)

	return scan.NewOrchestrator(universe, institutional, engine, battery, opts, log), nil
}
