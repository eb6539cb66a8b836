package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcwang/marketscan/internal/contracts"
)

// Repository persists finished scans. Scan output storage lives only
// here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new scan repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveScan replaces the stored leaderboards and composite ranking for a
// scan date.
func (r *Repository) SaveScan(
	ctx context.Context,
	date time.Time,
	leaderboards []contracts.Leaderboard,
	ranking []contracts.CompositeEntry,
) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM scan.leaderboard_entries WHERE scan_date = $1", date)
	if err != nil {
		return fmt.Errorf("clear leaderboards: %w", err)
	}
	_, err = tx.Exec(ctx, "DELETE FROM scan.composite_ranking WHERE scan_date = $1", date)
	if err != nil {
		return fmt.Errorf("clear ranking: %w", err)
	}

	entryQuery := `
		INSERT INTO scan.leaderboard_entries (
			scan_date, strategy, rank, ticker, name,
			total_return, sharpe_ratio, max_drawdown, win_rate, trade_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, board := range leaderboards {
		for i, e := range board.Entries {
			_, err := tx.Exec(ctx, entryQuery,
				date, board.Strategy, i+1, e.Ticker, e.Name,
				e.TotalReturn, e.SharpeRatio, e.MaxDrawdown, e.WinRate, e.TradeCount,
			)
			if err != nil {
				return fmt.Errorf("insert leaderboard entry: %w", err)
			}
		}
	}

	rankQuery := `
		INSERT INTO scan.composite_ranking (
			scan_date, rank, ticker, name, score, strategy_count,
			avg_sharpe, avg_return, strategies, best_strategy, best_sharpe
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for i, e := range ranking {
		_, err := tx.Exec(ctx, rankQuery,
			date, i+1, e.Ticker, e.Name, e.Score, e.StrategyCount,
			e.AvgSharpe, e.AvgReturn, e.Strategies, e.BestStrategy, e.BestSharpe,
		)
		if err != nil {
			return fmt.Errorf("insert ranking entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit scan: %w", err)
	}

	return nil
}

// LatestScanDate returns the most recent persisted scan date, or zero
// time when nothing has been stored yet.
func (r *Repository) LatestScanDate(ctx context.Context) (time.Time, error) {
	var date time.Time
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(scan_date), 'epoch'::date) FROM scan.composite_ranking",
	).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest scan date: %w", err)
	}
	if date.Year() <= 1970 {
		return time.Time{}, nil
	}
	return date, nil
}
