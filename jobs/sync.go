package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dcode-github/listing_analytics/metrics"
	"github.com/dcode-github/listing_analytics/mirror"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Syncer interface {
	SyncAll(ctx context.Context) (mirror.Tally, error)
}

// SyncJob runs the mirror sync, timing and recording each run.
type SyncJob struct {
	syncer  Syncer
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewSyncJob(syncer Syncer, m *metrics.Metrics, logger zerolog.Logger) *SyncJob {
	return &SyncJob{syncer: syncer, metrics: m, log: logger.With().Str("job", "mirror-sync").Logger()}
}

func (j *SyncJob) Run(ctx context.Context) (mirror.Tally, error) {
	j.log.Info().Msg("Starting mirror sync")
	start := time.Now()
	tally, err := j.syncer.SyncAll(ctx)
	elapsed := time.Since(start)
	if j.metrics != nil {
		j.metrics.ObserveSync(tally, elapsed, err)
	}
	if err != nil {
		j.log.Error().Err(err).Dur("elapsed", elapsed).Msg("Mirror sync failed")
		return tally, err
	}
	j.log.Info().
		Int("synced", tally.Synced).
		Int("skipped", tally.Skipped).
		Int("errored", tally.Errored).
		Dur("elapsed", elapsed).
		Msg("Mirror sync completed")
	return tally, nil
}

// Schedule returns a stopped UTC scheduler that runs job on expr, a standard
// five-field cron expression. Each scheduled run is bounded by timeout.
func Schedule(expr string, job *SyncJob, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{job.log}),
		cron.WithChain(cron.Recover(cronLogger{job.log})),
	)
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, _ = job.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", expr, err)
	}
	return c, nil
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
