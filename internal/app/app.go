// Package app wires configuration into a running ledger: it opens the
// configured snapshot store, loads the ledger and connects the optional
// backup bucket. The api, worker and cli commands share it.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/dvloznov/pocket-ledger/internal/config"
	"github.com/dvloznov/pocket-ledger/internal/ledger"
	"github.com/dvloznov/pocket-ledger/internal/storage"
	"github.com/dvloznov/pocket-ledger/internal/storage/file"
	"github.com/dvloznov/pocket-ledger/internal/storage/gcs"
	"github.com/dvloznov/pocket-ledger/internal/storage/memory"
	"github.com/rs/zerolog"
)

// App holds the ledger and the resources behind it.
type App struct {
	Config *config.Config
	Ledger *ledger.Ledger
	Store  storage.Store

	// Backups is nil when worker.backup_bucket is not configured.
	Backups gcs.Bucket

	closers []io.Closer
}

// Open builds an App from cfg. Close releases its clients.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg}

	rates, err := cfg.LoadRates()
	if err != nil {
		return nil, fmt.Errorf("Open: loading rates: %w", err)
	}

	a.Store, err = a.openStore(ctx, cfg.Storage, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("Open: %w", err)
	}

	if cfg.Worker.BackupBucket != "" {
		b, err := gcs.NewClientBucket(ctx, cfg.Worker.BackupBucket)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("Open: backup bucket: %w", err)
		}
		a.closers = append(a.closers, b)
		a.Backups = b
	}

	a.Ledger, err = ledger.Open(ctx, ledger.Options{
		Rates:      rates,
		Store:      a.Store,
		Logger:     log,
		UndoWindow: cfg.Ledger.GetUndoWindow(),
		MaxCatchUp: cfg.Ledger.MaxCatchUp,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("Open: %w", err)
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory storage, changes are lost on exit")
		return memory.NewStore(), nil
	case config.BackendGCS:
		b, err := gcs.NewClientBucket(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("snapshot bucket: %w", err)
		}
		a.closers = append(a.closers, b)
		log.Info().Str("bucket", cfg.Bucket).Str("object", cfg.Object).Msg("Using GCS storage")
		return gcs.NewStore(b, cfg.Object), nil
	default:
		s, err := file.NewStore(cfg.Path, cfg.Versions, log)
		if err != nil {
			return nil, fmt.Errorf("file store: %w", err)
		}
		log.Info().Str("path", cfg.Path).Int("versions", cfg.Versions).Msg("Using file storage")
		return s, nil
	}
}

// Close releases cloud clients. It is safe to call more than once.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
