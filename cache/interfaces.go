// Package cache implements the tiered live-ops cache: a bounded in-process
// LRU tier per namespace backed by a shared distributed tier, with TTL
// policy, pattern invalidation, batch operations, warming and statistics.
//
// The cache is always an optimization, never a source of truth: read and
// write paths mask internal failures and degrade to the local tier when the
// distributed tier is unreachable. The one exception is GetOrSet, which
// surfaces producer errors so callers know the underlying computation failed.
package cache

import (
	"context"
	"time"
)

// ProducerFunc produces a value on cache miss for GetOrSet.
// A producer error is propagated to the caller and never cached.
type ProducerFunc func(ctx context.Context) (any, error)

// WarmingFunc is a registered warming strategy callback. It repopulates one
// or more namespaces through the manager. Warming must be idempotent: it
// only rewrites cache entries, never source-of-truth data.
type WarmingFunc func(ctx context.Context) error

// Serializer converts values to and from the byte payloads both tiers store
type Serializer interface {
	// Serialize object to byte slice
	Serialize(v any) ([]byte, error)

	// Deserialize byte slice to object
	Deserialize(data []byte, v any) error

	// Name returns the serializer name
	Name() string
}

// DistributedStore is the remote tier contract. Every operation is
// namespaced: implementations prefix keys with "namespace:".
//
// Connectivity is optional. When the backing service is unreachable the
// store runs degraded: reads report a miss, writes succeed without effect.
type DistributedStore interface {
	// Get returns ErrCacheMiss when the key is absent
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores a value with a TTL
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error

	// Delete removes a key; removing an absent key is not an error
	Delete(ctx context.Context, namespace, key string) error

	// BatchGet resolves many keys in one round trip; absent keys are
	// simply missing from the result
	BatchGet(ctx context.Context, namespace string, keys []string) (map[string][]byte, error)

	// BatchSet writes many entries in one round trip
	BatchSet(ctx context.Context, namespace string, entries map[string][]byte, ttl time.Duration) error

	// DeleteMatching removes every key under the namespace matching the
	// wildcard pattern (server-side scan)
	DeleteMatching(ctx context.Context, namespace, pattern string) error

	// ClearNamespace removes every key under the namespace prefix
	ClearNamespace(ctx context.Context, namespace string) error

	// ClearAll flushes the entire distributed store. Operator escape
	// hatch; never called from application logic paths.
	ClearAll(ctx context.Context) error

	// Ping probes connectivity and updates the degraded flag
	Ping(ctx context.Context) error

	// Degraded reports whether the store is running in degraded mode
	Degraded() bool

	// Close releases resources
	Close() error
}
