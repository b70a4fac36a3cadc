package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  default_ttl: 10m
  namespaces:
    profiles:
      capacity: 2000
      ttl: 30m
redis:
  main:
    addr: localhost:6379
`)

	l := NewLoader(path, "")
	require.NoError(t, l.Load())

	assert.True(t, l.IsSet("cache.default_ttl"))
	assert.Equal(t, "localhost:6379", l.GetString("redis.main.addr"))
	assert.Equal(t, 2000, l.GetInt("cache.namespaces.profiles.capacity"))
}

func TestLoader_Load_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "")
	err := l.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestLoader_Unmarshal(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  default_capacity: 500
`)
	l := NewLoader(path, "")
	require.NoError(t, l.Load())

	var cfg struct {
		DefaultCapacity int `mapstructure:"default_capacity"`
	}
	require.NoError(t, l.Unmarshal("cache", &cfg))
	assert.Equal(t, 500, cfg.DefaultCapacity)
}

func TestLoader_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
redis:
  main:
    addr: localhost:6379
`)
	t.Setenv("APP_REDIS_MAIN_ADDR", "10.0.0.5:6379")

	l := NewLoader(path, "APP")
	require.NoError(t, l.Load())
	assert.Equal(t, "10.0.0.5:6379", l.GetString("redis.main.addr"))
}
