package di

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzleforge/liveops-cache/cache"
	"github.com/puzzleforge/liveops-cache/logger"
	"github.com/puzzleforge/liveops-cache/redis"
)

func TestNewWithoutRedis(t *testing.T) {
	injector := New(Options{
		Logger: logger.Config{Level: "error"},
	})

	manager, err := do.Invoke[*cache.Manager](injector)
	require.NoError(t, err)
	assert.True(t, manager.DistributedDegraded(), "no redis config wires a degraded store")

	ctx := context.Background()
	manager.Set(ctx, "content", "k1", []byte("v"), 0)
	value, ok := manager.Get(ctx, "content", "k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	// the redis manager provider is absent entirely
	_, err = do.Invoke[*redis.Manager](injector)
	assert.Error(t, err)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	injector := New(Options{
		Logger: logger.Config{Level: "error"},
		Redis: map[string]redis.Config{
			"main": {Addr: mr.Addr()},
		},
	})

	manager, err := do.Invoke[*cache.Manager](injector)
	require.NoError(t, err)
	assert.False(t, manager.DistributedDegraded())

	redisManager, err := do.Invoke[*redis.Manager](injector)
	require.NoError(t, err)
	t.Cleanup(func() { redisManager.Close() })

	ctx := context.Background()
	manager.Set(ctx, "content", "k1", []byte("v"), 0)
	assert.True(t, mr.Exists("content:k1"))
}

func TestNewProvidesWarmingAndReporter(t *testing.T) {
	injector := New(Options{
		Logger: logger.Config{Level: "error"},
	})

	warming, err := do.Invoke[*cache.WarmingScheduler](injector)
	require.NoError(t, err)
	require.NotNil(t, warming)
	t.Cleanup(func() { warming.Stop() })

	reporter, err := do.Invoke[*cache.Reporter](injector)
	require.NoError(t, err)
	require.NotNil(t, reporter)
}
