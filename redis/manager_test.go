package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzleforge/liveops-cache/logger"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	m, err := NewManager(map[string]Config{
		"main": {Addr: mr.Addr()},
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m, mr
}

func TestNewManager_NilLogger(t *testing.T) {
	m, err := NewManager(map[string]Config{}, nil)
	assert.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "logger cannot be nil")
}

func TestNewManager_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		configs map[string]Config
	}{
		{
			name:    "missing addr",
			configs: map[string]Config{"main": {}},
		},
		{
			name:    "db out of range",
			configs: map[string]Config{"main": {Addr: "localhost:6379", DB: 42}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(tt.configs, logger.NewTestLogger(t))
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestNewManager_Unreachable(t *testing.T) {
	m, err := NewManager(map[string]Config{
		"main": {Addr: "127.0.0.1:1"},
	}, logger.NewTestLogger(t))
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestManager_Client(t *testing.T) {
	m, _ := newTestManager(t)

	client := m.Client("main")
	require.NotNil(t, client)
	assert.NoError(t, client.Ping(context.Background()).Err())

	assert.Nil(t, m.Client("unknown"))
	assert.Equal(t, []string{"main"}, m.InstanceNames())
}

func TestManager_Ping(t *testing.T) {
	m, mr := newTestManager(t)

	ctx := context.Background()
	assert.NoError(t, m.Ping(ctx))

	mr.Close()
	assert.Error(t, m.Ping(ctx))
}

func TestHealthChecker(t *testing.T) {
	m, _ := newTestManager(t)

	hc := NewHealthChecker(m)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Check(context.Background()))

	empty := NewHealthChecker(nil)
	assert.Error(t, empty.Check(context.Background()))
}
