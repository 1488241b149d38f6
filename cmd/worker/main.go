package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/app"
	"github.com/dvloznov/pocket-ledger/internal/config"
	"github.com/dvloznov/pocket-ledger/internal/jobs"
	"github.com/dvloznov/pocket-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/pocket-ledger/internal/logger"
	"github.com/dvloznov/pocket-ledger/internal/worker"
)

// The worker runs recurring rules and snapshot backups on a schedule without
// serving the HTTP API. Only one process may own a snapshot at a time, so do
// not run it next to cmd/api against the same storage.
func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	boot := logger.New()
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load config")
	}

	log, err := logger.FromConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		boot.Fatal().Err(err).Msg("Invalid logging config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer a.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, jobStore,
		inmemory.WithWorkers(cfg.Worker.Workers),
		inmemory.WithLogger(log),
	)
	handler := worker.NewHandler(a.Ledger, a.Backups, cfg.Worker.BackupPrefix, log)

	log.Info().Msg("Starting worker service")
	if err := jobQueue.Start(ctx, handler.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	go worker.Schedule(ctx, jobQueue, jobs.JobTypeRunRecurring, cfg.Worker.GetInterval(), log)
	if a.Backups != nil {
		go worker.Schedule(ctx, jobQueue, jobs.JobTypeBackupSnapshot, cfg.Worker.GetBackupInterval(), log)
	} else {
		log.Warn().Msg("No backup bucket configured, snapshot backups disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := a.Ledger.Save(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Final snapshot save failed")
	}

	log.Info().Msg("Worker stopped")
}
