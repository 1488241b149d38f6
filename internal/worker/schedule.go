package worker

import (
	"context"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/jobs"
	"github.com/rs/zerolog"
)

// Schedule publishes a job of type typ immediately and then every interval
// until ctx is cancelled. Publish errors are logged and the schedule keeps
// going.
func Schedule(ctx context.Context, pub jobs.Publisher, typ jobs.JobType, interval time.Duration, log zerolog.Logger) {
	log = log.With().Str("job_type", string(typ)).Dur("interval", interval).Logger()
	log.Info().Msg("Job scheduled")

	publish := func() {
		if err := pub.Publish(ctx, &jobs.Job{Type: typ}); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to publish job")
		}
	}

	publish()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publish()
		}
	}
}
