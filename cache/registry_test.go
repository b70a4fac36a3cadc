package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryLookups(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	r := NewRegistry(cfg)

	assert.Equal(t, time.Hour, r.TTL("content"))
	assert.Equal(t, 2000, r.Capacity("content"))
	assert.Equal(t, 5*time.Minute, r.TTL("predictions"))
}

func TestRegistryUnknownNamespaceFallsBack(t *testing.T) {
	cfg := &Config{DefaultTTL: 3 * time.Minute, DefaultCapacity: 250}
	cfg.ApplyDefaults()
	r := NewRegistry(cfg)

	// a lookup never fails, unknown names get the global defaults
	assert.Equal(t, 3*time.Minute, r.TTL("never-configured"))
	assert.Equal(t, 250, r.Capacity("never-configured"))
}

func TestRegistryNamesSorted(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	r := NewRegistry(cfg)

	names := r.Names()
	assert.Contains(t, names, "content")
	assert.Contains(t, names, DefaultNamespace)
	assert.IsIncreasing(t, names)
}
