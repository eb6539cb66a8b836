package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	batteryFile string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Market-wide multi-strategy scanner",
	Long: `marketscan - market-wide multi-strategy scanner

Backtests a battery of trading strategies against every instrument in
the universe, keeps a bounded per-strategy leaderboard, and ranks
instruments across strategies.

Usage:
  go run ./cmd/scan [command]

Examples:
  go run ./cmd/scan run
  go run ./cmd/scan run --top-n 20 --workers 4
  go run ./cmd/scan backtest 2330
  go run ./cmd/scan fetch 2330 2317 --from 2024-01-01
  go run ./cmd/scan serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&batteryFile, "battery", "", "strategy battery YAML (default: built-in battery)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
