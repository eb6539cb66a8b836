package contracts

import "context"

// StrategyKind tags how a strategy selects its input series. The scan
// orchestrator branches on this tag only, never on display names.
type StrategyKind int

const (
	// KindPrice strategies run on the raw price series.
	KindPrice StrategyKind = iota
	// KindFlow strategies require the institutional-merged series.
	KindFlow
)

// Signal is a per-bar trading instruction emitted by a strategy.
type Signal int8

const (
	Hold Signal = 0
	Buy  Signal = 1
	Sell Signal = -1
)

// Strategy generates one signal per bar of the input series. The signal
// slice must have the same length as series.Candles.
type Strategy interface {
	Name() string
	Kind() StrategyKind
	Signals(series *Series) ([]Signal, error)
}

// UniverseLoader enumerates the instrument universe. Enumeration order
// must be stable within one scan; it decides tie-breaking in the
// leaderboards.
type UniverseLoader interface {
	Tickers(ctx context.Context) ([]string, error)
	Load(ctx context.Context, ticker string) (*Series, error)
}

// InstitutionalLoader merges institutional flow into a price series.
// Returns ErrDataUnavailable when no flow data exists for the ticker.
type InstitutionalLoader interface {
	Merge(ctx context.Context, series *Series) (*Series, error)
}

// Runner is the backtest engine seen from the orchestrator.
type Runner interface {
	Run(series *Series, strategy Strategy) (*StrategyResult, error)
}

// Renderer turns a finished scan into a document. It receives read-only
// snapshots and must not mutate or re-sort them.
type Renderer interface {
	Render(leaderboards []Leaderboard, ranking []CompositeEntry) ([]byte, error)
}
