package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/api"
	"github.com/dvloznov/pocket-ledger/internal/api/handlers"
	"github.com/dvloznov/pocket-ledger/internal/app"
	"github.com/dvloznov/pocket-ledger/internal/config"
	"github.com/dvloznov/pocket-ledger/internal/jobs"
	"github.com/dvloznov/pocket-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/pocket-ledger/internal/logger"
	"github.com/dvloznov/pocket-ledger/internal/worker"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config file (optional)")
		schedule   = flag.Bool("schedule", true, "Run recurring rules and backups on the worker interval")
	)
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

	ctx := context.Background()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer a.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, jobStore,
		inmemory.WithWorkers(cfg.Worker.Workers),
		inmemory.WithLogger(log),
	)
	jobHandler := worker.NewHandler(a.Ledger, a.Backups, cfg.Worker.BackupPrefix, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, jobHandler.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	if *schedule {
		go worker.Schedule(workerCtx, jobQueue, jobs.JobTypeRunRecurring, cfg.Worker.GetInterval(), log)
		if a.Backups != nil {
			go worker.Schedule(workerCtx, jobQueue, jobs.JobTypeBackupSnapshot, cfg.Worker.GetBackupInterval(), log)
		}
	}

	router := api.NewRouter(
		handlers.NewLedgerHandler(a.Ledger, log),
		handlers.NewJobsHandler(jobStore, jobQueue, log),
		log,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop scheduling, then wait for in-flight jobs
	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	// Flush anything a failed save left behind
	if err := a.Ledger.Save(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Final snapshot save failed")
	}

	log.Info().Msg("Server exited")
}
