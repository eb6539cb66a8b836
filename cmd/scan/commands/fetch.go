package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/external/twse"
	"github.com/jcwang/marketscan/pkg/config"
	"github.com/jcwang/marketscan/pkg/logger"
	"github.com/jcwang/marketscan/pkg/redis"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <ticker> [ticker...]",
	Short: "Download market data into the scan data directory",
	Long: `Downloads daily candles for the given tickers from TWSE and
writes them in the scan's CSV layout. With --flow-days, also downloads
the institutional trading reports for the trailing days and appends
them to the flow file.

Example:
  go run ./cmd/scan fetch 2330 2317 --from 2024-01-01
  go run ./cmd/scan fetch 2330 --flow-days 60`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var (
	fetchFrom     string
	fetchTo       string
	fetchFlowDays int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date YYYY-MM-DD (default: 1 year ago)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date YYYY-MM-DD (default: today)")
	fetchCmd.Flags().IntVar(&fetchFlowDays, "flow-days", 0, "also fetch institutional data for the trailing N days")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	from, to, err := fetchPeriod()
	if err != nil {
		return err
	}

	// Cache cuts repeated month downloads when re-running the fetch.
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "twse")
	}

	client := twse.NewClient(cfg, cache, log)
	ctx := cmd.Context()

	// Instrument names come from the institutional report when we can
	// get one; tickers stand in otherwise.
	names := fetchNames(ctx, client, to, log)

	PrintDoubleSeparator()
	fmt.Printf("  Fetch: %d instruments, %s ~ %s\n", len(args), from.Format("2006-01-02"), to.Format("2006-01-02"))
	PrintSeparator()

	for i, ticker := range args {
		candles, err := client.FetchRange(ctx, ticker, from, to)
		if err != nil {
			if errors.Is(err, contracts.ErrDataUnavailable) {
				PrintError(fmt.Sprintf("%s: no data [%d/%d]", ticker, i+1, len(args)))
				continue
			}
			return fmt.Errorf("fetch %s: %w", ticker, err)
		}

		name := names[ticker]
		if name == "" {
			name = ticker
		}
		if err := twse.WriteCandleCSV(cfg.DataDir, ticker, name, candles); err != nil {
			return err
		}

		fmt.Printf("  %s (%s): %d bars [%d/%d]\n", ticker, name, len(candles), i+1, len(args))
	}

	if fetchFlowDays > 0 {
		if err := fetchFlows(ctx, client, cfg, to, log); err != nil {
			return err
		}
	}

	fmt.Println()
	PrintSuccess("Fetch finished")
	fmt.Printf("   Data dir: %s\n", cfg.DataDir)
	return nil
}

func fetchPeriod() (time.Time, time.Time, error) {
	to := time.Now()
	if fetchTo != "" {
		parsed, err := time.Parse("2006-01-02", fetchTo)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
		to = parsed
	}

	from := to.AddDate(-1, 0, 0)
	if fetchFrom != "" {
		parsed, err := time.Parse("2006-01-02", fetchFrom)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
		from = parsed
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from is after --to")
	}
	return from, to, nil
}

// fetchNames grabs display names from the latest institutional report.
func fetchNames(ctx context.Context, client *twse.Client, around time.Time, log *logger.Logger) map[string]string {
	names := make(map[string]string)

	// Walk back over holidays.
	for back := 0; back < 7; back++ {
		rows, err := client.FetchInstitutional(ctx, around.AddDate(0, 0, -back))
		if err != nil {
			continue
		}
		for _, row := range rows {
			names[row.Ticker] = row.Name
		}
		return names
	}

	log.Warn("No institutional report found; using tickers as names")
	return names
}

// fetchFlows downloads the trailing institutional reports and appends
// them to the flow file. Holidays are skipped.
func fetchFlows(ctx context.Context, client *twse.Client, cfg *config.Config, to time.Time, log *logger.Logger) error {
	fetched := 0
	for back := fetchFlowDays - 1; back >= 0; back-- {
		day := to.AddDate(0, 0, -back)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		rows, err := client.FetchInstitutional(ctx, day)
		if err != nil {
			if errors.Is(err, contracts.ErrDataUnavailable) {
				continue
			}
			return fmt.Errorf("fetch institutional %s: %w", day.Format("2006-01-02"), err)
		}

		if err := twse.AppendFlows(cfg.FlowFile, day, rows); err != nil {
			return err
		}
		fetched++
	}

	fmt.Printf("  Institutional: %d trading days appended to %s\n", fetched, cfg.FlowFile)
	return nil
}
