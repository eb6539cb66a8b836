package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwang/marketscan/internal/api/handlers"
	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/report"
	"github.com/jcwang/marketscan/internal/scan"
	"github.com/jcwang/marketscan/pkg/logger"
)

type fixedUniverse struct {
	series map[string]*contracts.Series
	order  []string
}

func (u *fixedUniverse) Tickers(ctx context.Context) ([]string, error) {
	return u.order, nil
}

func (u *fixedUniverse) Load(ctx context.Context, ticker string) (*contracts.Series, error) {
	return u.series[ticker], nil
}

type fixedStrategy struct{ name string }

func (s *fixedStrategy) Name() string                 { return s.name }
func (s *fixedStrategy) Kind() contracts.StrategyKind { return contracts.KindPrice }
func (s *fixedStrategy) Signals(series *contracts.Series) ([]contracts.Signal, error) {
	return make([]contracts.Signal, series.Len()), nil
}

type fixedRunner struct{}

func (r *fixedRunner) Run(series *contracts.Series, strategy contracts.Strategy) (*contracts.StrategyResult, error) {
	return &contracts.StrategyResult{
		Ticker:      series.Ticker,
		Name:        series.Name,
		SharpeRatio: 1.5,
		TotalReturn: 0.2,
		TradeCount:  5,
	}, nil
}

func seriesOf(ticker string, volume float64) *contracts.Series {
	candles := make([]contracts.Candle, 10)
	for i := range candles {
		candles[i] = contracts.Candle{Date: time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC), Close: 100, Volume: volume}
	}
	return &contracts.Series{Ticker: ticker, Name: ticker + " Corp", Candles: candles}
}

func TestScanJobRun(t *testing.T) {
	universe := &fixedUniverse{
		order: []string{"2330"},
		series: map[string]*contracts.Series{
			"2330": seriesOf("2330", 1000),
		},
	}
	battery := []contracts.Strategy{&fixedStrategy{name: "S1"}}
	log := logger.NewNop()

	orchestrator := scan.NewOrchestrator(universe, nil, &fixedRunner{}, battery, scan.Options{TopN: 30}, log)
	store := handlers.NewScanStore()
	reportDir := t.TempDir()

	job := NewScanJob(
		orchestrator,
		scan.NewAggregator(log),
		report.NewHTML(),
		reportDir,
		30,
		"0 0 18 * * MON-FRI",
		store,
		nil,
		log,
	)

	assert.Equal(t, "market_scan", job.Name())
	require.NoError(t, job.Run(context.Background()))

	// Report file exists and carries the scanned instrument.
	page, err := os.ReadFile(filepath.Join(reportDir, ReportFileName))
	require.NoError(t, err)
	assert.Contains(t, string(page), "2330")

	// API store sees the new scan.
	_, leaderboards, ranking, ok := store.Get()
	require.True(t, ok)
	require.Len(t, leaderboards, 1)
	require.Len(t, ranking, 1)
	assert.Equal(t, "2330", ranking[0].Ticker)
	assert.InDelta(t, 1.5, ranking[0].AvgSharpe, 1e-9)
}

func TestMergeCandles(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	stored := []contracts.Candle{
		{Date: day(2), Close: 100},
		{Date: day(3), Close: 101},
	}
	fresh := []contracts.Candle{
		{Date: day(3), Close: 105}, // revised bar replaces stored
		{Date: day(6), Close: 106},
	}

	merged := mergeCandles(stored, fresh)
	require.Len(t, merged, 3)
	assert.Equal(t, 100.0, merged[0].Close)
	assert.Equal(t, 105.0, merged[1].Close)
	assert.Equal(t, day(6), merged[2].Date)
}
