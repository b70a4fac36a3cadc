package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/logger"
)

// WarmingScheduler periodically runs registered warming strategies.
//
// Two states: idle and warming. A trigger while warming is dropped, not
// queued, so warming passes never stack; the guard is a single atomic
// boolean, the subsystem's only explicit concurrency-control primitive.
// Every process instance may run its own schedule independently: warming
// only repopulates cache entries, so overlap across instances is harmless.
type WarmingScheduler struct {
	strategies map[string]WarmingFunc
	mu         sync.RWMutex

	warming  atomic.Bool
	pool     *ants.Pool
	sched    gocron.Scheduler
	interval time.Duration
	log      *logger.CtxZapLogger
}

// NewWarmingScheduler creates the scheduler. poolSize bounds how many
// strategies run concurrently within one pass.
func NewWarmingScheduler(interval time.Duration, poolSize int, log *logger.CtxZapLogger) (*WarmingScheduler, error) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	if log == nil {
		log = logger.NewNop()
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create warming pool: %w", err)
	}
	return &WarmingScheduler{
		strategies: make(map[string]WarmingFunc),
		pool:       pool,
		interval:   interval,
		log:        log,
	}, nil
}

// Register adds a named strategy, replacing any previous one with the name
func (w *WarmingScheduler) Register(name string, fn WarmingFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.strategies[name] = fn
	w.log.Debug("warming strategy registered", zap.String("strategy", name))
}

// Strategies returns the registered strategy names
func (w *WarmingScheduler) Strategies() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.strategies))
	for name := range w.strategies {
		names = append(names, name)
	}
	return names
}

// Trigger runs every registered strategy. Returns false when a pass is
// already running (the trigger is dropped) or nothing is registered.
func (w *WarmingScheduler) Trigger(ctx context.Context) bool {
	w.mu.RLock()
	batch := make(map[string]WarmingFunc, len(w.strategies))
	for name, fn := range w.strategies {
		batch[name] = fn
	}
	w.mu.RUnlock()
	return w.runPass(ctx, batch)
}

// TriggerOne runs a single strategy by name. Returns false when the name
// is unknown or a pass is already running.
func (w *WarmingScheduler) TriggerOne(ctx context.Context, name string) bool {
	w.mu.RLock()
	fn, ok := w.strategies[name]
	w.mu.RUnlock()
	if !ok {
		w.log.Warn("unknown warming strategy", zap.String("strategy", name))
		return false
	}
	return w.runPass(ctx, map[string]WarmingFunc{name: fn})
}

// runPass executes one warming pass under the idle/warming guard
func (w *WarmingScheduler) runPass(ctx context.Context, batch map[string]WarmingFunc) bool {
	if len(batch) == 0 {
		return false
	}
	if !w.warming.CompareAndSwap(false, true) {
		w.log.Debug("warming pass already running, trigger dropped")
		return false
	}
	defer w.warming.Store(false)

	start := time.Now()
	var wg sync.WaitGroup
	var failures atomic.Int64

	for name, fn := range batch {
		name, fn := name, fn
		wg.Add(1)
		run := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					failures.Add(1)
					w.log.ErrorCtx(ctx, "warming strategy panicked",
						zap.String("strategy", name),
						zap.Any("panic", r))
				}
			}()
			if err := fn(ctx); err != nil {
				failures.Add(1)
				w.log.WarnCtx(ctx, "warming strategy failed",
					zap.String("strategy", name),
					zap.Error(err))
			}
		}
		if err := w.pool.Submit(run); err != nil {
			// pool released mid-shutdown; run inline so the pass completes
			run()
		}
	}
	wg.Wait()

	w.log.InfoCtx(ctx, "warming pass completed",
		zap.Int("strategies", len(batch)),
		zap.Int64("failures", failures.Load()),
		zap.Duration("elapsed", time.Since(start)))
	return true
}

// Warming reports whether a pass is currently running
func (w *WarmingScheduler) Warming() bool {
	return w.warming.Load()
}

// Start begins the periodic trigger. Idempotent with Stop; the scheduler
// is owned here and torn down cleanly.
func (w *WarmingScheduler) Start() error {
	if w.sched != nil {
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			w.Trigger(context.Background())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule warming job: %w", err)
	}
	w.sched = sched
	sched.Start()
	w.log.Info("warming scheduler started", zap.Duration("interval", w.interval))
	return nil
}

// Stop shuts the periodic trigger down and releases the pool
func (w *WarmingScheduler) Stop() error {
	if w.sched != nil {
		if err := w.sched.Shutdown(); err != nil {
			w.log.Error("warming scheduler shutdown failed", zap.Error(err))
		}
		w.sched = nil
	}
	w.pool.Release()
	return nil
}
