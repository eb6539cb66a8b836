package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcwang/marketscan/internal/backtest"
	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/marketdata"
	"github.com/jcwang/marketscan/pkg/config"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest <ticker>",
	Short: "Backtest the full battery against one instrument",
	Long: `Runs every strategy in the battery against a single instrument
and prints the raw metrics, without the leaderboard gates. Useful for
inspecting why an instrument did or did not qualify.

Example:
  go run ./cmd/scan backtest 2330`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ticker := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	universe := marketdata.NewDirLoader(cfg.DataDir, log)
	series, err := universe.Load(ctx, ticker)
	if err != nil {
		return fmt.Errorf("load %s: %w", ticker, err)
	}

	institutional := flowLoader(cfg, log)
	merged := series
	if institutional != nil {
		m, err := institutional.Merge(ctx, series)
		if err != nil {
			log.WithError(err).Warn("No institutional data; flow strategies will be skipped")
		} else {
			merged = m
		}
	}

	battery, _, err := loadBattery(merged.HasFlows())
	if err != nil {
		return err
	}

	engine := backtest.NewEngine(log)

	PrintDoubleSeparator()
	fmt.Printf("  Backtest: %s (%s), %d bars, mean volume %.0f\n",
		series.Ticker, series.Name, series.Len(), series.MeanVolume())
	PrintSeparator()

	widths := []int{14, 8, 8, 9, 8, 7}
	PrintTableHeader([]string{"Strategy", "Return", "Sharpe", "Drawdown", "WinRate", "Trades"}, widths)

	for _, strategy := range battery {
		input := series
		if strategy.Kind() == contracts.KindFlow {
			input = merged
		}

		result, err := engine.Run(input, strategy)
		if err != nil {
			var berr *contracts.BacktestError
			if errors.As(err, &berr) {
				PrintTableRow([]string{strategy.Name(), "-", "-", "-", "-", "-"}, widths)
				continue
			}
			return err
		}

		PrintTableRow([]string{
			strategy.Name(),
			formatPct(result.TotalReturn),
			formatNum(result.SharpeRatio),
			formatPct(result.MaxDrawdown),
			formatPct(result.WinRate),
			fmt.Sprintf("%d", result.TradeCount),
		}, widths)
	}

	return nil
}
