package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcwang/marketscan/internal/api"
	"github.com/jcwang/marketscan/internal/api/handlers"
	"github.com/jcwang/marketscan/internal/external/twse"
	"github.com/jcwang/marketscan/internal/marketdata"
	"github.com/jcwang/marketscan/internal/report"
	"github.com/jcwang/marketscan/internal/scan"
	"github.com/jcwang/marketscan/internal/scheduler"
	"github.com/jcwang/marketscan/internal/scheduler/jobs"
	"github.com/jcwang/marketscan/pkg/config"
	"github.com/jcwang/marketscan/pkg/database"
	"github.com/jcwang/marketscan/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the scan scheduler",
	Long: `Starts the long-running service: the REST API over the latest
scan results, the scheduled daily scan, and the pre-scan data refresh.

Endpoints:
  GET  /health
  GET  /api/scan/latest
  GET  /api/scan/ranking
  GET  /api/scan/leaderboards
  GET  /api/scan/leaderboards/{strategy}
  POST /api/scan/run

Example:
  go run ./cmd/scan serve
  go run ./cmd/scan serve --port 8085`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := newLogger(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing service")

	opts := scan.Options{
		TopN:      cfg.Scan.TopN,
		MinVolume: cfg.Scan.MinVolume,
		Workers:   cfg.Scan.Workers,
	}

	// 3. Scan pipeline
	orchestrator, err := buildOrchestrator(cfg, opts, log)
	if err != nil {
		return err
	}
	aggregator := scan.NewAggregator(log)

	// 4. Optional persistence
	var repo *marketdata.Repository
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		repo = marketdata.NewRepository(db.Pool)
		log.Info("Connected to database")
	}

	// 5. Optional fetch cache
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "twse")
	}

	// 6. Scheduler with the fetch and scan jobs
	store := handlers.NewScanStore()
	sched := scheduler.New(log)

	scanJob := jobs.NewScanJob(
		orchestrator,
		aggregator,
		report.NewHTML(),
		cfg.ReportDir,
		opts.TopN,
		cfg.Scan.Schedule,
		store,
		repo,
		log,
	)
	if err := sched.AddJob(scanJob); err != nil {
		return err
	}

	twseClient := twse.NewClient(cfg, cache, log)
	// Refresh data half an hour before the scan.
	fetchJob := jobs.NewFetchJob(twseClient, cfg.DataDir, cfg.FlowFile, "0 30 17 * * MON-FRI", log)
	if err := sched.AddJob(fetchJob); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	// 7. API server
	trigger := func() {
		if err := sched.RunJob(scanJob.Name()); err != nil {
			log.WithError(err).Error("On-demand scan failed to start")
		}
	}
	scanHandler := handlers.NewScanHandler(store, trigger, log)
	router := api.NewRouter(scanHandler, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// 8. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Service stopped")
	return nil
}
