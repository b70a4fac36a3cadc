// Package di provides samber/do providers for the cache stack, so
// consuming services receive an explicitly constructed, injected cache
// manager instead of reaching for shared package-level state.
package di

import (
	"github.com/samber/do/v2"

	"github.com/puzzleforge/liveops-cache/cache"
	"github.com/puzzleforge/liveops-cache/logger"
	"github.com/puzzleforge/liveops-cache/redis"
)

// Options construction-time configuration for the container
type Options struct {
	Logger logger.Config
	Redis  map[string]redis.Config
	Cache  cache.Config
}

// New builds an injector with providers for the logger manager, the redis
// manager, the distributed store, the tiered cache manager, the warming
// scheduler and the stats reporter.
//
// Without redis configuration the cache provider wires a degraded
// (local-tier-only) distributed store, matching the adapter's contract.
func New(opts Options) do.Injector {
	injector := do.New()

	do.Provide(injector, func(i do.Injector) (*logger.Manager, error) {
		return logger.NewManager(opts.Logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*logger.CtxZapLogger, error) {
		manager, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return nil, err
		}
		return manager.GetLogger(cache.ComponentName), nil
	})

	if len(opts.Redis) > 0 {
		do.Provide(injector, func(i do.Injector) (*redis.Manager, error) {
			manager, err := do.Invoke[*logger.Manager](i)
			if err != nil {
				return nil, err
			}
			return redis.NewManager(opts.Redis, manager.GetLogger("redis"))
		})
	}

	do.Provide(injector, func(i do.Injector) (cache.DistributedStore, error) {
		log, err := do.Invoke[*logger.CtxZapLogger](i)
		if err != nil {
			return nil, err
		}
		if len(opts.Redis) == 0 {
			return cache.NewRedisStore(nil, log), nil
		}
		redisManager, err := do.Invoke[*redis.Manager](i)
		if err != nil {
			return nil, err
		}
		instance := opts.Cache.RedisInstance
		if instance == "" {
			instance = "main"
		}
		return cache.NewRedisStore(redisManager.Client(instance), log), nil
	})

	do.Provide(injector, func(i do.Injector) (*cache.Manager, error) {
		dist, err := do.Invoke[cache.DistributedStore](i)
		if err != nil {
			return nil, err
		}
		log, err := do.Invoke[*logger.CtxZapLogger](i)
		if err != nil {
			return nil, err
		}
		cfg := opts.Cache
		return cache.NewManager(&cfg, dist, log), nil
	})

	do.Provide(injector, func(i do.Injector) (*cache.WarmingScheduler, error) {
		log, err := do.Invoke[*logger.CtxZapLogger](i)
		if err != nil {
			return nil, err
		}
		cfg := opts.Cache
		cfg.ApplyDefaults()
		return cache.NewWarmingScheduler(cfg.Warming.Interval, cfg.Warming.PoolSize, log)
	})

	do.Provide(injector, func(i do.Injector) (*cache.Reporter, error) {
		manager, err := do.Invoke[*cache.Manager](i)
		if err != nil {
			return nil, err
		}
		log, err := do.Invoke[*logger.CtxZapLogger](i)
		if err != nil {
			return nil, err
		}
		cfg := opts.Cache
		cfg.ApplyDefaults()
		return cache.NewReporter(manager, cfg.Reporting.Interval, cfg.Reporting.ResetAfter, log), nil
	})

	return injector
}
