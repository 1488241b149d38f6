// Package worker runs the ledger's background jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/jobs"
	"github.com/dvloznov/pocket-ledger/internal/ledger"
	"github.com/dvloznov/pocket-ledger/internal/storage/gcs"
	"github.com/rs/zerolog"
)

// ErrNoBackupBucket is returned by backup jobs when no bucket is configured.
var ErrNoBackupBucket = errors.New("no backup bucket configured")

// Ledger is the part of ledger.Ledger the worker drives.
type Ledger interface {
	RunRecurring(ctx context.Context, now time.Time) (ledger.RunReport, error)
	Export() ([]byte, error)
	Save(ctx context.Context) error
}

var _ Ledger = (*ledger.Ledger)(nil)

// Handler dispatches jobs by type.
type Handler struct {
	ledger  Ledger
	backups gcs.Bucket
	prefix  string
	now     func() time.Time
	log     zerolog.Logger
}

// NewHandler creates a Handler. backups may be nil, in which case backup
// jobs fail.
func NewHandler(l Ledger, backups gcs.Bucket, prefix string, log zerolog.Logger) *Handler {
	return &Handler{
		ledger:  l,
		backups: backups,
		prefix:  prefix,
		now:     time.Now,
		log:     log,
	}
}

// Handle implements jobs.JobHandler.
func (h *Handler) Handle(ctx context.Context, job *jobs.Job) error {
	asOf := job.AsOf
	if asOf.IsZero() {
		asOf = h.now()
	}

	switch job.Type {
	case jobs.JobTypeRunRecurring:
		return h.runRecurring(ctx, job, asOf)
	case jobs.JobTypeBackupSnapshot:
		return h.backup(ctx, job, asOf)
	default:
		noRetry(job)
		return fmt.Errorf("Handle: unknown job type %q", job.Type)
	}
}

func (h *Handler) runRecurring(ctx context.Context, job *jobs.Job, asOf time.Time) error {
	// A previous attempt may have generated transactions and failed to save
	// them. Those are already in memory, so the run below finds nothing new.
	if job.RetryCount > 0 {
		if err := h.ledger.Save(ctx); err != nil {
			return fmt.Errorf("runRecurring: saving pending changes: %w", err)
		}
	}

	report, err := h.ledger.RunRecurring(ctx, asOf)
	if err != nil {
		return fmt.Errorf("runRecurring: %w", err)
	}

	job.Result = fmt.Sprintf("generated %d transactions from %d rules", len(report.Generated), len(report.Advanced))
	if len(report.Stalled) > 0 {
		h.log.Warn().Strs("rule_ids", report.Stalled).Msg("Recurring rules stalled")
	}
	return nil
}

func (h *Handler) backup(ctx context.Context, job *jobs.Job, asOf time.Time) error {
	if h.backups == nil {
		noRetry(job)
		return fmt.Errorf("backup: %w", ErrNoBackupBucket)
	}

	data, err := h.ledger.Export()
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	name, err := gcs.Backup(ctx, h.backups, h.prefix, data, asOf)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	job.Result = name
	return nil
}

// noRetry marks the current attempt as the last one.
func noRetry(job *jobs.Job) {
	job.MaxRetries = job.RetryCount
}
