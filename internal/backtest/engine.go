// Package backtest converts a strategy's signal stream into simulated
// trades and per-run performance metrics.
package backtest

import (
	"fmt"
	"math"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/logger"
)

const tradingDaysPerYear = 252

// Engine runs a long-only, single-position simulation: a Buy signal
// enters at that bar's close, a Sell signal exits at that bar's close,
// repeated signals while in (or out of) a position are ignored.
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new backtest engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Run executes one (instrument, strategy) backtest. Any failure comes
// back as a *contracts.BacktestError so callers can treat it as a skip.
func (e *Engine) Run(series *contracts.Series, strategy contracts.Strategy) (*contracts.StrategyResult, error) {
	if series.Len() < 2 {
		return nil, &contracts.BacktestError{
			Ticker:   series.Ticker,
			Strategy: strategy.Name(),
			Err:      fmt.Errorf("series too short: %d bars", series.Len()),
		}
	}

	signals, err := strategy.Signals(series)
	if err != nil {
		return nil, &contracts.BacktestError{Ticker: series.Ticker, Strategy: strategy.Name(), Err: err}
	}
	if len(signals) != series.Len() {
		return nil, &contracts.BacktestError{
			Ticker:   series.Ticker,
			Strategy: strategy.Name(),
			Err:      fmt.Errorf("signal count %d does not match %d bars", len(signals), series.Len()),
		}
	}

	sim := e.simulate(series, signals)

	result := &contracts.StrategyResult{
		Ticker:      series.Ticker,
		Name:        series.Name,
		TotalReturn: sim.totalReturn(),
		SharpeRatio: sharpeRatio(sim.dailyReturns),
		MaxDrawdown: maxDrawdown(sim.equity),
		WinRate:     sim.winRate(),
		TradeCount:  len(sim.trades),
	}

	e.logger.WithFields(map[string]interface{}{
		"ticker":       series.Ticker,
		"strategy":     strategy.Name(),
		"trades":       result.TradeCount,
		"total_return": result.TotalReturn,
		"sharpe":       result.SharpeRatio,
	}).Debug("Backtest finished")

	return result, nil
}

// simulation holds the state produced by one run.
type simulation struct {
	dailyReturns []float64
	equity       []float64 // starts at 1.0
	trades       []float64 // per round-trip returns
}

func (e *Engine) simulate(series *contracts.Series, signals []contracts.Signal) *simulation {
	candles := series.Candles
	sim := &simulation{
		dailyReturns: make([]float64, 0, len(candles)-1),
		equity:       make([]float64, 1, len(candles)),
	}
	sim.equity[0] = 1.0

	inPosition := false
	entryPrice := 0.0
	value := 1.0

	if signals[0] == contracts.Buy {
		inPosition = true
		entryPrice = candles[0].Close
	}

	for i := 1; i < len(candles); i++ {
		// Mark to market while holding.
		ret := 0.0
		if inPosition && candles[i-1].Close > 0 {
			ret = candles[i].Close/candles[i-1].Close - 1
		}
		value *= 1 + ret
		sim.dailyReturns = append(sim.dailyReturns, ret)
		sim.equity = append(sim.equity, value)

		switch signals[i] {
		case contracts.Buy:
			if !inPosition {
				inPosition = true
				entryPrice = candles[i].Close
			}
		case contracts.Sell:
			if inPosition {
				inPosition = false
				sim.trades = append(sim.trades, candles[i].Close/entryPrice-1)
			}
		}
	}

	// Close any open position at the final bar.
	if inPosition {
		last := candles[len(candles)-1].Close
		sim.trades = append(sim.trades, last/entryPrice-1)
	}

	return sim
}

func (s *simulation) totalReturn() float64 {
	return s.equity[len(s.equity)-1] - 1
}

func (s *simulation) winRate() float64 {
	if len(s.trades) == 0 {
		return 0
	}
	wins := 0
	for _, tr := range s.trades {
		if tr > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(s.trades))
}

// sharpeRatio annualizes mean daily return over daily volatility,
// assuming a 0% risk-free rate.
func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	vol := volatility(returns, mean)
	if vol == 0 {
		return 0
	}

	return mean / vol * math.Sqrt(tradingDaysPerYear)
}

// volatility is the population standard deviation.
func volatility(returns []float64, mean float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var variance float64
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}

// maxDrawdown walks the equity curve tracking the running peak.
func maxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	maxDD := 0.0
	peak := equity[0]

	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}
