// Package janitor deletes expired cache rows on a schedule, independent of
// read traffic. It holds no locks that block readers: a lookup racing a
// sweep either sees the not-yet-deleted row or a miss, both valid.
package janitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/core"
	"github.com/rankpulse/provider-cache/internal/metrics"
)

const defaultSchedule = "@hourly"

// Janitor sweeps expired rows out of every registered entry store. Rows are
// kept for a retention window past their expiry so that fallback
// (allow-stale) reads can still find them; only rows expired for longer
// than the window are deleted.
type Janitor struct {
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
	schedule  string
	retention time.Duration

	stores map[string]core.EntryStore
}

// Option customises the Janitor.
type Option func(*Janitor)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(j *Janitor) {
		if c != nil {
			j.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(j *Janitor) {
		if now != nil {
			j.now = now
		}
	}
}

// WithSchedule overrides the cron specification for sweeps.
func WithSchedule(spec string) Option {
	return func(j *Janitor) {
		if spec != "" {
			j.schedule = spec
		}
	}
}

// WithStaleRetention sets how long expired rows stay available for
// allow-stale reads before a sweep removes them.
func WithStaleRetention(d time.Duration) Option {
	return func(j *Janitor) {
		if d >= 0 {
			j.retention = d
		}
	}
}

// New constructs a Janitor with an hourly schedule and a 24h stale
// retention window by default.
func New(logger *zap.Logger, opts ...Option) *Janitor {
	j := &Janitor{
		logger:    logger,
		now:       time.Now,
		schedule:  defaultSchedule,
		retention: 24 * time.Hour,
		stores:    make(map[string]core.EntryStore),
	}

	for _, opt := range opts {
		opt(j)
	}

	if j.cron == nil {
		j.cron = cron.New()
	}
	return j
}

// Register adds a resource type's store to the sweep set.
func (j *Janitor) Register(resource string, store core.EntryStore) {
	j.stores[resource] = store
}

// Start schedules recurring sweeps and begins running them.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		j.Sweep(context.Background())
	}); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("janitor started",
		zap.String("schedule", j.schedule),
		zap.Duration("stale_retention", j.retention),
		zap.Int("stores", len(j.stores)))
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("janitor stopped")
}

// Sweep deletes rows expired for longer than the retention window from
// every registered store and returns the total deleted. A failing store is
// logged and skipped; the sweep continues with the others.
func (j *Janitor) Sweep(ctx context.Context) int64 {
	runID := uuid.NewString()
	cutoff := j.now().Add(-j.retention)

	var total int64
	for resource, store := range j.stores {
		deleted, err := store.DeleteExpired(ctx, cutoff)
		if err != nil {
			j.logger.Warn("sweep failed for resource",
				zap.String("run_id", runID),
				zap.String("resource", resource),
				zap.Error(err))
			metrics.StoreErrors.WithLabelValues(resource, "sweep").Inc()
			continue
		}

		if deleted > 0 {
			metrics.JanitorDeleted.WithLabelValues(resource).Add(float64(deleted))
		}
		j.logger.Debug("swept expired cache rows",
			zap.String("run_id", runID),
			zap.String("resource", resource),
			zap.Int64("deleted", deleted))
		total += deleted
	}

	j.logger.Info("sweep complete",
		zap.String("run_id", runID),
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", total))
	return total
}
