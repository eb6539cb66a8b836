// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jcwang/marketscan/internal/api/handlers"
	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/internal/marketdata"
	"github.com/jcwang/marketscan/internal/scan"
	"github.com/jcwang/marketscan/pkg/logger"
)

// ReportFileName is the rendered report's file name inside the report
// directory.
const ReportFileName = "market_scan_all_strategies.html"

// ScanJob runs the full market scan: orchestrate, aggregate, render the
// report, and publish the results to the API store and the database.
type ScanJob struct {
	orchestrator *scan.Orchestrator
	aggregator   *scan.Aggregator
	renderer     contracts.Renderer
	reportDir    string
	topN         int
	schedule     string

	store *handlers.ScanStore    // optional
	repo  *marketdata.Repository // optional

	logger *logger.Logger
}

// NewScanJob creates the scheduled scan job. store and repo may be nil
// when the API or the database is not running.
func NewScanJob(
	orchestrator *scan.Orchestrator,
	aggregator *scan.Aggregator,
	renderer contracts.Renderer,
	reportDir string,
	topN int,
	schedule string,
	store *handlers.ScanStore,
	repo *marketdata.Repository,
	log *logger.Logger,
) *ScanJob {
	return &ScanJob{
		orchestrator: orchestrator,
		aggregator:   aggregator,
		renderer:     renderer,
		reportDir:    reportDir,
		topN:         topN,
		schedule:     schedule,
		store:        store,
		repo:         repo,
		logger:       log,
	}
}

func (j *ScanJob) Name() string {
	return "market_scan"
}

func (j *ScanJob) Schedule() string {
	return j.schedule
}

func (j *ScanJob) Run(ctx context.Context) error {
	startTime := time.Now()

	leaderboards, err := j.orchestrator.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	ranking := j.aggregator.Aggregate(leaderboards, j.topN)

	if err := j.writeReport(leaderboards, ranking); err != nil {
		return err
	}

	if j.store != nil {
		j.store.Put(startTime, leaderboards, ranking)
	}

	if j.repo != nil {
		scanDate := startTime.Truncate(24 * time.Hour)
		if err := j.repo.SaveScan(ctx, scanDate, leaderboards, ranking); err != nil {
			return fmt.Errorf("persist scan: %w", err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"strategies": len(leaderboards),
		"ranked":     len(ranking),
		"duration":   time.Since(startTime),
	}).Info("Market scan finished")

	return nil
}

func (j *ScanJob) writeReport(leaderboards []contracts.Leaderboard, ranking []contracts.CompositeEntry) error {
	page, err := j.renderer.Render(leaderboards, ranking)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if err := os.MkdirAll(j.reportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(j.reportDir, ReportFileName)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	j.logger.WithField("path", path).Info("Report written")
	return nil
}
