package cache

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/component"
	"github.com/puzzleforge/liveops-cache/logger"
	frameworkRedis "github.com/puzzleforge/liveops-cache/redis"
)

// ComponentName component name
const ComponentName = "cache"

// Component wires the tiered cache into the component lifecycle: it builds
// the manager, the warming scheduler, the stats reporter and the
// maintenance timers (expired-entry sweep, distributed recovery probe),
// and tears them all down on Stop.
type Component struct {
	config   *Config
	manager  *Manager
	warming  *WarmingScheduler
	reporter *Reporter
	maint    gocron.Scheduler
	log      *logger.CtxZapLogger

	// injected before Start when a distributed tier is wanted
	redisManager  *frameworkRedis.Manager
	redisProvider func() *frameworkRedis.Manager
}

// NewComponent creates the cache component
func NewComponent() *Component {
	return &Component{}
}

// Name returns the component name
func (c *Component) Name() string {
	return ComponentName
}

// DependsOn declares component dependencies
func (c *Component) DependsOn() []string {
	return []string{
		"config",
		"logger",
		"optional:redis",
	}
}

// Init loads configuration; missing configuration means defaults
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	cfg := Config{}
	if loader != nil && loader.IsSet(ComponentName) {
		if err := loader.Unmarshal(ComponentName, &cfg); err != nil {
			return ErrConfigInvalid.Wrap(err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.config = &cfg
	c.log = logger.GetLogger(ComponentName)
	return nil
}

// Start builds the stores, manager and schedulers
func (c *Component) Start(ctx context.Context) error {
	if c.config == nil {
		return ErrConfigInvalid.WithMsg("cache component not initialized")
	}
	if c.redisManager == nil && c.redisProvider != nil {
		c.redisManager = c.redisProvider()
	}

	dist := c.buildDistributedStore()
	c.manager = NewManager(c.config, dist, c.log)

	warming, err := NewWarmingScheduler(c.config.Warming.Interval, c.config.Warming.PoolSize, c.log)
	if err != nil {
		return err
	}
	c.warming = warming
	if c.config.Warming.Enabled {
		if err := c.warming.Start(); err != nil {
			return err
		}
	}

	c.reporter = NewReporter(c.manager, c.config.Reporting.Interval, c.config.Reporting.ResetAfter, c.log)
	if c.config.Reporting.Enabled {
		if err := c.reporter.Start(); err != nil {
			return err
		}
	}

	if err := c.startMaintenance(); err != nil {
		return err
	}

	c.log.InfoCtx(ctx, "cache component started",
		zap.Strings("namespaces", c.manager.Registry().Names()),
		zap.Bool("distributed", c.redisManager != nil),
		zap.Bool("degraded", dist.Degraded()))
	return nil
}

// Stop tears everything down; safe to call more than once
func (c *Component) Stop(ctx context.Context) error {
	if c.maint != nil {
		if err := c.maint.Shutdown(); err != nil {
			c.log.ErrorCtx(ctx, "maintenance scheduler shutdown failed", zap.Error(err))
		}
		c.maint = nil
	}
	if c.reporter != nil {
		c.reporter.Stop()
	}
	if c.warming != nil {
		c.warming.Stop()
	}
	if c.manager != nil {
		c.manager.Close()
	}
	if c.log != nil {
		c.log.InfoCtx(ctx, "cache component stopped")
	}
	return nil
}

// buildDistributedStore selects the backing client. No redis manager or
// an unknown instance yields a degraded (local-tier-only) store.
func (c *Component) buildDistributedStore() DistributedStore {
	if c.redisManager == nil {
		c.log.Info("no redis manager injected, cache runs local-tier-only")
		return NewRedisStore(nil, c.log)
	}
	instance := c.config.RedisInstance
	if instance == "" {
		instance = "main"
	}
	client := c.redisManager.Client(instance)
	if client == nil {
		c.log.Warn("redis instance not found, cache runs local-tier-only",
			zap.String("instance", instance))
	}
	return NewRedisStore(client, c.log)
}

// startMaintenance owns the expired-entry sweep and the distributed
// recovery probe on one scheduler
func (c *Component) startMaintenance() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create maintenance scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(c.config.SweepInterval),
		gocron.NewTask(func() {
			if purged := c.manager.PurgeExpired(); purged > 0 {
				c.log.Debug("expired entries purged", zap.Int("count", purged))
			}
		}),
	)
	if err != nil {
		sched.Shutdown()
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}

	if c.redisManager != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(c.config.ProbeInterval),
			gocron.NewTask(func() {
				// recovery probe: flips the degraded flag back once
				// connectivity returns
				c.manager.PingDistributed(context.Background())
			}),
		)
		if err != nil {
			sched.Shutdown()
			return fmt.Errorf("failed to schedule probe job: %w", err)
		}
	}

	c.maint = sched
	sched.Start()
	return nil
}

// SetRedisManager injects the redis manager; call before Start
func (c *Component) SetRedisManager(manager *frameworkRedis.Manager) {
	c.redisManager = manager
}

// SetRedisManagerProvider defers manager resolution to Start, for wiring
// through the component runner where the redis component connects first
func (c *Component) SetRedisManagerProvider(fn func() *frameworkRedis.Manager) {
	c.redisProvider = fn
}

// Manager returns the tiered cache manager
func (c *Component) Manager() *Manager {
	return c.manager
}

// Warming returns the warming scheduler
func (c *Component) Warming() *WarmingScheduler {
	return c.warming
}

// Reporter returns the stats reporter
func (c *Component) Reporter() *Reporter {
	return c.reporter
}

// GetHealthChecker exposes the cache health check
func (c *Component) GetHealthChecker() component.HealthChecker {
	return c
}

// Check performs a local-tier round trip through the manager. The
// distributed tier being down only degrades the cache, so it never fails
// this check.
func (c *Component) Check(ctx context.Context) error {
	if c.manager == nil {
		return ErrConfigInvalid.WithMsg("cache component not started")
	}
	const probeKey = "__health_check__"
	c.manager.Set(ctx, DefaultNamespace, probeKey, []byte("ok"), 0)
	if _, ok := c.manager.Get(ctx, DefaultNamespace, probeKey); !ok {
		return ErrStoreGet.WithMsg("local tier probe failed")
	}
	c.manager.Delete(ctx, DefaultNamespace, probeKey)
	return nil
}
