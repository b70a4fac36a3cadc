package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLoader serves instance configs from a plain map
type mapLoader struct {
	configs map[string]Config
}

func (m *mapLoader) Unmarshal(key string, v any) error {
	*(v.(*map[string]Config)) = m.configs
	return nil
}

func (m *mapLoader) IsSet(key string) bool { return len(m.configs) > 0 }

func TestComponentLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewComponent()
	ctx := context.Background()

	assert.Equal(t, ComponentName, c.Name())
	assert.Contains(t, c.DependsOn(), "config")

	require.NoError(t, c.Init(ctx, &mapLoader{configs: map[string]Config{
		"main": {Addr: mr.Addr()},
	}}))
	require.NoError(t, c.Start(ctx))

	require.NotNil(t, c.Manager())
	assert.NotNil(t, c.Manager().Client("main"))
	require.NoError(t, c.GetHealthChecker().Check(ctx))

	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx), "Stop is idempotent")
	assert.Nil(t, c.Manager())
}

func TestComponentWithoutConfiguration(t *testing.T) {
	c := NewComponent()
	ctx := context.Background()

	require.NoError(t, c.Init(ctx, nil))
	require.NoError(t, c.Start(ctx))
	assert.Nil(t, c.Manager())

	// no manager means the check reports unhealthy, not a panic
	assert.Error(t, c.GetHealthChecker().Check(ctx))
	require.NoError(t, c.Stop(ctx))
}

func TestComponentStartUnreachableInstance(t *testing.T) {
	c := NewComponent()
	ctx := context.Background()

	require.NoError(t, c.Init(ctx, &mapLoader{configs: map[string]Config{
		"main": {Addr: "127.0.0.1:1"},
	}}))
	assert.Error(t, c.Start(ctx))
}
