// Package scan holds the market-wide scan orchestrator and the
// cross-strategy ranking aggregator.
package scan

import (
	"context"
	"sort"
	"sync"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/logger"
)

// MinTrades is the minimum activity gate: a backtest with fewer round
// trips carries no statistically meaningful signal and never reaches a
// leaderboard.
const MinTrades = 3

// Options holds per-scan parameters.
type Options struct {
	TopN      int     // leaderboard and composite ranking size cap
	MinVolume float64 // mean daily volume liquidity gate
	Workers   int     // instrument fan-out; 0 or 1 means sequential
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 30
	}
	if o.MinVolume <= 0 {
		o.MinVolume = 500
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Orchestrator iterates the instrument universe, gates on liquidity and
// activity, backtests every battery strategy per instrument, and builds
// one bounded leaderboard per strategy.
//
// Failure policy is best effort: a bad CSV, a missing institutional row,
// or a strategy blowing up on one instrument reduces coverage, it never
// aborts the scan. The only fatal path is the universe enumeration
// itself failing, because then there is nothing to scan.
type Orchestrator struct {
	universe      contracts.UniverseLoader
	institutional contracts.InstitutionalLoader // nil when no flow source configured
	engine        contracts.Runner
	battery       []contracts.Strategy
	opts          Options
	logger        *logger.Logger
}

// NewOrchestrator wires a scan. With a nil institutional loader,
// flow-kind strategies are dropped from the battery for the whole run.
func NewOrchestrator(
	universe contracts.UniverseLoader,
	institutional contracts.InstitutionalLoader,
	engine contracts.Runner,
	battery []contracts.Strategy,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	effective := battery
	if institutional == nil {
		effective = make([]contracts.Strategy, 0, len(battery))
		for _, s := range battery {
			if s.Kind() == contracts.KindFlow {
				log.WithField("strategy", s.Name()).Warn("No institutional source; strategy omitted from battery")
				continue
			}
			effective = append(effective, s)
		}
	}

	return &Orchestrator{
		universe:      universe,
		institutional: institutional,
		engine:        engine,
		battery:       effective,
		opts:          opts.withDefaults(),
		logger:        log,
	}
}

// Battery returns the effective strategy battery for this run, in
// leaderboard order.
func (o *Orchestrator) Battery() []contracts.Strategy {
	return o.battery
}

// accepted is one retained backtest result tagged with the instrument's
// position in the universe enumeration. The index preserves the
// tie-breaking order even when instruments are evaluated concurrently.
type accepted struct {
	index    int
	strategy string
	result   contracts.StrategyResult
}

// Scan runs the full universe scan and returns one leaderboard per
// battery strategy, in battery order. Leaderboards may be empty; that is
// a valid outcome, not an error.
func (o *Orchestrator) Scan(ctx context.Context) ([]contracts.Leaderboard, error) {
	tickers, err := o.universe.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(map[string]interface{}{
		"instruments": len(tickers),
		"strategies":  len(o.battery),
		"workers":     o.opts.Workers,
	}).Info("Market scan started")

	var (
		mu      sync.Mutex
		results []accepted
	)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				batch := o.evaluateInstrument(ctx, idx, tickers[idx])
				if len(batch) == 0 {
					continue
				}
				mu.Lock()
				results = append(results, batch...)
				mu.Unlock()
			}
		}()
	}

	for idx := range tickers {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return o.buildLeaderboards(results), nil
}

// evaluateInstrument loads one instrument, applies the shared liquidity
// gate, and backtests it against every strategy in the battery. Every
// failure is a local skip.
func (o *Orchestrator) evaluateInstrument(ctx context.Context, idx int, ticker string) []accepted {
	series, err := o.universe.Load(ctx, ticker)
	if err != nil {
		o.logger.WithError(err).WithField("ticker", ticker).Debug("Skipping instrument: load failed")
		return nil
	}

	// One liquidity gate shared across all strategies.
	if series.MeanVolume() < o.opts.MinVolume {
		o.logger.WithFields(map[string]interface{}{
			"ticker":      ticker,
			"mean_volume": series.MeanVolume(),
		}).Debug("Skipping instrument: below volume gate")
		return nil
	}

	// Merge institutional flow once per instrument if any flow strategy
	// will need it. A failed merge is not fatal; flow strategies just
	// sit out this instrument.
	var merged *contracts.Series
	if o.institutional != nil && o.batteryNeedsFlow() {
		merged, err = o.institutional.Merge(ctx, series)
		if err != nil {
			merged = nil
			o.logger.WithError(err).WithField("ticker", ticker).Debug("Institutional merge unavailable")
		}
	}

	var batch []accepted
	for _, strat := range o.battery {
		input := series
		if strat.Kind() == contracts.KindFlow {
			if merged == nil {
				continue
			}
			input = merged
		}

		result, err := o.engine.Run(input, strat)
		if err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"ticker":   ticker,
				"strategy": strat.Name(),
			}).Debug("Skipping pair: backtest failed")
			continue
		}

		if result.TradeCount < MinTrades {
			continue
		}

		batch = append(batch, accepted{index: idx, strategy: strat.Name(), result: *result})
	}

	return batch
}

func (o *Orchestrator) batteryNeedsFlow() bool {
	for _, s := range o.battery {
		if s.Kind() == contracts.KindFlow {
			return true
		}
	}
	return false
}

// buildLeaderboards groups accepted results per strategy, restores the
// universe enumeration order, then sorts by sharpe descending with a
// stable sort so exact ties keep that order. Truncation to TopN happens
// only here, after the whole universe has been seen.
func (o *Orchestrator) buildLeaderboards(results []accepted) []contracts.Leaderboard {
	perStrategy := make(map[string][]accepted, len(o.battery))
	for _, r := range results {
		perStrategy[r.strategy] = append(perStrategy[r.strategy], r)
	}

	boards := make([]contracts.Leaderboard, 0, len(o.battery))
	for _, strat := range o.battery {
		group := perStrategy[strat.Name()]

		sort.Slice(group, func(i, j int) bool {
			return group[i].index < group[j].index
		})
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].result.SharpeRatio > group[j].result.SharpeRatio
		})

		if len(group) > o.opts.TopN {
			group = group[:o.opts.TopN]
		}

		entries := make([]contracts.StrategyResult, len(group))
		for i, g := range group {
			entries[i] = g.result
		}

		boards = append(boards, contracts.Leaderboard{Strategy: strat.Name(), Entries: entries})

		o.logger.WithFields(map[string]interface{}{
			"strategy": strat.Name(),
			"entries":  len(entries),
		}).Info("Leaderboard built")
	}

	return boards
}
