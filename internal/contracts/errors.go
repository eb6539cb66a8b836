package contracts

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable marks a missing or unreadable series for one
// instrument. It is never fatal: the orchestrator skips the unit of work
// and moves on.
var ErrDataUnavailable = errors.New("market data unavailable")

// BacktestError wraps a failure of one (instrument, strategy) backtest.
// Like ErrDataUnavailable it only ever causes a skip.
type BacktestError struct {
	Ticker   string
	Strategy string
	Err      error
}

func (e *BacktestError) Error() string {
	return fmt.Sprintf("backtest %s/%s: %v", e.Ticker, e.Strategy, e.Err)
}

func (e *BacktestError) Unwrap() error {
	return e.Err
}
