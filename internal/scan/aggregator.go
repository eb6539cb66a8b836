package scan

import (
	"sort"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/logger"
)

// Aggregator synthesizes a single cross-strategy ranking out of the
// per-strategy leaderboards. It only ever sees leaderboard members: an
// instrument that is strong in one strategy but got truncated out of
// that strategy's top N contributes nothing here.
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a ranking aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// tickerStats accumulates one instrument's appearances across
// leaderboards.
type tickerStats struct {
	name       string
	strategies []string
	sharpes    []float64
	returns    []float64

	// The best tracker starts at zero and moves on strictly greater
	// sharpe only, so a ticker whose every appearance has non-positive
	// sharpe keeps an empty best strategy. Kept as-is; callers display
	// it verbatim.
	bestSharpe   float64
	bestStrategy string
}

// Aggregate walks the leaderboards in their given order, scores each
// ticker as (number of strategies it appears in) x (mean sharpe across
// those appearances), and returns the topN tickers by score descending.
// An empty input yields an empty ranking.
func (a *Aggregator) Aggregate(leaderboards []contracts.Leaderboard, topN int) []contracts.CompositeEntry {
	stats := make(map[string]*tickerStats)
	order := make([]string, 0) // first-seen ticker order, the tie-break

	for _, board := range leaderboards {
		for _, entry := range board.Entries {
			st, ok := stats[entry.Ticker]
			if !ok {
				st = &tickerStats{name: entry.Name}
				stats[entry.Ticker] = st
				order = append(order, entry.Ticker)
			}

			st.strategies = append(st.strategies, board.Strategy)
			st.sharpes = append(st.sharpes, entry.SharpeRatio)
			st.returns = append(st.returns, entry.TotalReturn)

			if entry.SharpeRatio > st.bestSharpe {
				st.bestSharpe = entry.SharpeRatio
				st.bestStrategy = board.Strategy
			}
		}
	}

	ranking := make([]contracts.CompositeEntry, 0, len(order))
	for _, ticker := range order {
		st := stats[ticker]
		count := len(st.strategies)
		avgSharpe := mean(st.sharpes)

		ranking = append(ranking, contracts.CompositeEntry{
			Ticker:        ticker,
			Name:          st.name,
			Score:         float64(count) * avgSharpe,
			StrategyCount: count,
			AvgSharpe:     avgSharpe,
			AvgReturn:     mean(st.returns),
			Strategies:    contracts.FormatStrategies(st.strategies),
			BestStrategy:  st.bestStrategy,
			BestSharpe:    st.bestSharpe,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})

	if len(ranking) > topN {
		ranking = ranking[:topN]
	}

	a.logger.WithFields(map[string]interface{}{
		"tickers": len(stats),
		"ranked":  len(ranking),
	}).Info("Composite ranking built")

	return ranking
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
