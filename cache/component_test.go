package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzleforge/liveops-cache/logger"
	frameworkRedis "github.com/puzzleforge/liveops-cache/redis"
)

// stubLoader feeds a fixed cache configuration to Init
type stubLoader struct {
	cfg   *Config
	isSet bool
	err   error
}

func (s *stubLoader) Unmarshal(key string, v any) error {
	if s.err != nil {
		return s.err
	}
	*(v.(*Config)) = *s.cfg
	return nil
}

func (s *stubLoader) IsSet(key string) bool { return s.isSet }

func TestComponentNameAndDependencies(t *testing.T) {
	c := NewComponent()
	assert.Equal(t, ComponentName, c.Name())
	assert.Contains(t, c.DependsOn(), "config")
	assert.Contains(t, c.DependsOn(), "logger")
}

func TestComponentLifecycleWithoutRedis(t *testing.T) {
	c := NewComponent()
	ctx := context.Background()

	require.NoError(t, c.Init(ctx, nil))
	require.NoError(t, c.Start(ctx))

	require.NotNil(t, c.Manager())
	require.NotNil(t, c.Warming())
	require.NotNil(t, c.Reporter())
	assert.True(t, c.Manager().DistributedDegraded(), "no redis means local-tier-only")

	// the cache still serves from the local tier
	c.Manager().Set(ctx, "content", "k1", []byte("v"), 0)
	value, ok := c.Manager().Get(ctx, "content", "k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, c.GetHealthChecker().Check(ctx))

	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx), "Stop is idempotent")
}

func TestComponentLifecycleWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	redisManager, err := frameworkRedis.NewManager(map[string]frameworkRedis.Config{
		"main": {Addr: mr.Addr()},
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { redisManager.Close() })

	c := NewComponent()
	c.SetRedisManager(redisManager)
	ctx := context.Background()

	require.NoError(t, c.Init(ctx, &stubLoader{
		cfg: &Config{
			RedisInstance: "main",
			Warming:       WarmingConfig{Enabled: true, Interval: time.Hour},
			Reporting:     ReportingConfig{Enabled: true, Interval: time.Hour},
		},
		isSet: true,
	}))
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { c.Stop(ctx) })

	assert.False(t, c.Manager().DistributedDegraded())

	c.Manager().Set(ctx, "content", "k1", []byte("v"), 0)
	assert.True(t, mr.Exists("content:k1"), "write-through reached the distributed tier")
}

func TestComponentInitLoaderFailure(t *testing.T) {
	c := NewComponent()
	err := c.Init(context.Background(), &stubLoader{
		err:   errors.New("malformed yaml"),
		isSet: true,
	})
	require.Error(t, err)
	assert.True(t, ErrConfigInvalid.Is(err))
}

func TestComponentInitInvalidConfig(t *testing.T) {
	c := NewComponent()
	err := c.Init(context.Background(), &stubLoader{
		cfg: &Config{
			Namespaces: map[string]NamespaceConfig{
				"broken": {Capacity: -5, TTL: time.Minute},
			},
		},
		isSet: true,
	})
	require.Error(t, err)
}

func TestComponentStartWithoutInit(t *testing.T) {
	c := NewComponent()
	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, ErrConfigInvalid.Is(err))
}

func TestComponentCheckBeforeStart(t *testing.T) {
	c := NewComponent()
	assert.Error(t, c.Check(context.Background()))
}
