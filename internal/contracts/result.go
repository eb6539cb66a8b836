package contracts

import "strings"

// StrategyResult holds the backtest metrics for one (instrument, strategy)
// pair. Produced once by the engine, then read-only.
type StrategyResult struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	TotalReturn float64 `json:"total_return"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRate     float64 `json:"win_rate"`
	TradeCount  int     `json:"trade_count"`
}

// Leaderboard is the bounded top-N result set for one strategy, sorted by
// sharpe ratio descending. Ties keep universe enumeration order.
type Leaderboard struct {
	Strategy string           `json:"strategy"`
	Entries  []StrategyResult `json:"entries"`
}

// IsEmpty reports whether no instrument qualified for this strategy.
func (l *Leaderboard) IsEmpty() bool {
	return len(l.Entries) == 0
}

// CompositeEntry is one row of the cross-strategy ranking. Score is
// StrategyCount times AvgSharpe, rewarding instruments that show up on
// several leaderboards rather than dominating a single one.
type CompositeEntry struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	StrategyCount int     `json:"strategy_count"`
	AvgSharpe     float64 `json:"avg_sharpe"`
	AvgReturn     float64 `json:"avg_return"`
	Strategies    string  `json:"strategies"` // display list, first 3
	BestStrategy  string  `json:"best_strategy"`
	BestSharpe    float64 `json:"best_sharpe"`
}

// FormatStrategies builds the display list for a composite entry: the
// first three contributing strategy names, with a continuation marker
// when there are more.
func FormatStrategies(names []string) string {
	shown := names
	if len(shown) > 3 {
		shown = shown[:3]
	}
	out := strings.Join(shown, ", ")
	if len(names) > 3 {
		out += "..."
	}
	return out
}
