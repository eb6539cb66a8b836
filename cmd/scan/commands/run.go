package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/marketdata"
	"github.com/jcwang/marketscan/internal/report"
	"github.com/jcwang/marketscan/internal/scan"
	"github.com/jcwang/marketscan/pkg/config"
	"github.com/jcwang/marketscan/pkg/database"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full market scan",
	Long: `Runs the full market scan once: every instrument in the data
directory is gated, backtested against the whole strategy battery, and
the per-strategy leaderboards plus the composite ranking are written as
an HTML report.

Example:
  go run ./cmd/scan run
  go run ./cmd/scan run --top-n 20 --min-volume 1000 --workers 4`,
	RunE: runScan,
}

var (
	runTopN      int
	runMinVolume float64
	runWorkers   int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runTopN, "top-n", 0, "leaderboard size (default from config)")
	runCmd.Flags().Float64Var(&runMinVolume, "min-volume", -1, "mean daily volume gate in lots (default from config)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent instruments (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	opts := scan.Options{
		TopN:      cfg.Scan.TopN,
		MinVolume: cfg.Scan.MinVolume,
		Workers:   cfg.Scan.Workers,
	}
	if runTopN > 0 {
		opts.TopN = runTopN
	}
	if runMinVolume >= 0 {
		opts.MinVolume = runMinVolume
	}
	if runWorkers > 0 {
		opts.Workers = runWorkers
	}

	orchestrator, err := buildOrchestrator(cfg, opts, log)
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Println("  Market scan")
	PrintSeparator()
	fmt.Printf("  Data dir  : %s\n", cfg.DataDir)
	fmt.Printf("  Top N     : %d\n", opts.TopN)
	fmt.Printf("  Min volume: %.0f\n", opts.MinVolume)
	fmt.Printf("  Strategies: %d\n", len(orchestrator.Battery()))
	PrintSeparator()

	ctx := cmd.Context()
	startTime := time.Now()

	leaderboards, err := orchestrator.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	ranking := scan.NewAggregator(log).Aggregate(leaderboards, opts.TopN)

	// Report
	page, err := report.NewHTML().Render(leaderboards, ranking)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	reportPath := filepath.Join(cfg.ReportDir, "market_scan_all_strategies.html")
	if err := os.WriteFile(reportPath, page, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	// Persistence (optional)
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := marketdata.NewRepository(db.Pool)
		scanDate := startTime.Truncate(24 * time.Hour)
		if err := repo.SaveScan(ctx, scanDate, leaderboards, ranking); err != nil {
			return fmt.Errorf("persist scan: %w", err)
		}
		log.Info("Scan persisted to database")
	}

	printRanking(ranking)

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Scan finished in %.1fs", time.Since(startTime).Seconds()))
	fmt.Printf("   Report: %s\n", reportPath)
	return nil
}

// printRanking shows the top of the composite ranking on the console.
func printRanking(ranking []contracts.CompositeEntry) {
	if len(ranking) == 0 {
		fmt.Println("\nNo instrument qualified for any leaderboard.")
		return
	}

	shown := ranking
	if len(shown) > 10 {
		shown = shown[:10]
	}

	fmt.Println("\nComposite ranking:")
	widths := []int{4, 8, 12, 7, 6, 7, 8, 14}
	PrintTableHeader([]string{"#", "Ticker", "Name", "Score", "Count", "Sharpe", "Return", "Best"}, widths)
	for i, e := range shown {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			e.Ticker,
			e.Name,
			formatNum(e.Score),
			fmt.Sprintf("%d", e.StrategyCount),
			formatNum(e.AvgSharpe),
			formatPct(e.AvgReturn),
			e.BestStrategy,
		}, widths)
	}
}
