package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/health"
	"github.com/puzzleforge/liveops-cache/logger"
)

// healthProbeTimeout latency bound on the distributed liveness probe
const healthProbeTimeout = 2 * time.Second

// Reporter periodically snapshots manager statistics, logs them and resets
// the counters on a rolling window. It also exposes the composite cache
// health check.
//
// A degraded cache (distributed tier down, local tier serving) is never
// conflated with overall process health.
type Reporter struct {
	manager    *Manager
	interval   time.Duration
	resetAfter time.Duration
	sched      gocron.Scheduler
	log        *logger.CtxZapLogger
}

// NewReporter creates a stats reporter
func NewReporter(manager *Manager, interval, resetAfter time.Duration, log *logger.CtxZapLogger) *Reporter {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if resetAfter <= 0 {
		resetAfter = time.Hour
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Reporter{
		manager:    manager,
		interval:   interval,
		resetAfter: resetAfter,
		log:        log,
	}
}

// Report logs one snapshot and resets the counters (never the cached
// data) once the rolling window has elapsed
func (r *Reporter) Report(ctx context.Context) *Snapshot {
	snap := r.manager.Stats()
	r.log.InfoCtx(ctx, "cache stats",
		zap.Int64("hits", snap.Hits),
		zap.Int64("misses", snap.Misses),
		zap.Int64("sets", snap.Sets),
		zap.Int64("deletes", snap.Deletes),
		zap.Int64("evictions", snap.Evictions),
		zap.Float64("hit_rate", snap.HitRate),
		zap.Int64("size_bytes", snap.SizeBytes),
		zap.Bool("degraded", r.manager.DistributedDegraded()))

	if time.Since(snap.LastReset) >= r.resetAfter {
		r.manager.ResetStats()
		r.log.DebugCtx(ctx, "cache stats counters reset",
			zap.Duration("window", r.resetAfter))
	}
	return snap
}

// HealthCheck probes the distributed tier within a latency bound.
// Healthy when it responds, degraded otherwise; the local tier keeps
// serving either way, so degraded is not an error.
func (r *Reporter) HealthCheck(ctx context.Context) health.Status {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	if err := r.manager.PingDistributed(probeCtx); err != nil {
		return health.StatusDegraded
	}
	return health.StatusHealthy
}

// Start begins periodic reporting
func (r *Reporter) Start() error {
	if r.sched != nil {
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			r.Report(context.Background())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule stats job: %w", err)
	}
	r.sched = sched
	sched.Start()
	r.log.Info("stats reporter started",
		zap.Duration("interval", r.interval),
		zap.Duration("reset_after", r.resetAfter))
	return nil
}

// Stop shuts periodic reporting down
func (r *Reporter) Stop() error {
	if r.sched != nil {
		if err := r.sched.Shutdown(); err != nil {
			r.log.Error("stats reporter shutdown failed", zap.Error(err))
		}
		r.sched = nil
	}
	return nil
}
