package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/external/twse"
	"github.com/jcwang/marketscan/internal/marketdata"
	"github.com/jcwang/marketscan/pkg/logger"
)

// FetchJob refreshes the on-disk market data before the daily scan: the
// current month of candles for every instrument already in the data
// directory, and the day's institutional trading rows.
type FetchJob struct {
	client   *twse.Client
	dataDir  string
	flowFile string
	schedule string
	logger   *logger.Logger
}

// NewFetchJob creates the scheduled fetch job.
func NewFetchJob(client *twse.Client, dataDir, flowFile, schedule string, log *logger.Logger) *FetchJob {
	return &FetchJob{
		client:   client,
		dataDir:  dataDir,
		flowFile: flowFile,
		schedule: schedule,
		logger:   log,
	}
}

func (j *FetchJob) Name() string {
	return "data_fetch"
}

func (j *FetchJob) Schedule() string {
	return j.schedule
}

func (j *FetchJob) Run(ctx context.Context) error {
	now := time.Now()

	if err := j.refreshCandles(ctx, now); err != nil {
		return err
	}

	rows, err := j.client.FetchInstitutional(ctx, now)
	switch {
	case errors.Is(err, contracts.ErrDataUnavailable):
		// Holiday: no institutional report published.
		j.logger.WithField("date", now.Format("2006-01-02")).Info("No institutional data for today")
		return nil
	case err != nil:
		return fmt.Errorf("fetch institutional: %w", err)
	}

	if err := twse.AppendFlows(j.flowFile, now, rows); err != nil {
		return fmt.Errorf("append flows: %w", err)
	}

	j.logger.WithField("tickers", len(rows)).Info("Institutional data appended")
	return nil
}

// refreshCandles re-downloads the current month for each instrument in
// the data directory and merges it into the stored series.
func (j *FetchJob) refreshCandles(ctx context.Context, now time.Time) error {
	loader := marketdata.NewDirLoader(j.dataDir, j.logger)
	tickers, err := loader.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("enumerate data dir: %w", err)
	}

	updated := 0
	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		series, err := loader.Load(ctx, ticker)
		if err != nil {
			j.logger.WithError(err).WithField("ticker", ticker).Warn("Skipping unreadable series")
			continue
		}

		month, err := j.client.FetchMonth(ctx, ticker, now)
		if err != nil {
			j.logger.WithError(err).WithField("ticker", ticker).Warn("Quote fetch failed")
			continue
		}

		merged := mergeCandles(series.Candles, month)
		if err := twse.WriteCandleCSV(j.dataDir, series.Ticker, series.Name, merged); err != nil {
			return fmt.Errorf("rewrite %s: %w", ticker, err)
		}
		updated++
	}

	j.logger.WithFields(map[string]interface{}{
		"instruments": len(tickers),
		"updated":     updated,
	}).Info("Candle data refreshed")

	return nil
}

// mergeCandles overlays fresh bars onto the stored series by date,
// keeping chronological order.
func mergeCandles(stored, fresh []contracts.Candle) []contracts.Candle {
	byDate := make(map[string]int, len(stored))
	merged := make([]contracts.Candle, len(stored))
	copy(merged, stored)

	for i, c := range merged {
		byDate[c.Date.Format("2006-01-02")] = i
	}

	for _, c := range fresh {
		key := c.Date.Format("2006-01-02")
		if i, ok := byDate[key]; ok {
			merged[i] = c
		} else {
			merged = append(merged, c)
		}
	}

	sort.Slice(merged, func(i, k int) bool {
		return merged[i].Date.Before(merged[k].Date)
	})

	return merged
}
