package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/puzzleforge/liveops-cache/logger"
)

// Manager orchestrates the local and distributed tiers per namespace.
//
// It is the only cache surface consuming services are expected to use;
// constructing ad hoc store pairings per service is exactly the duplication
// this component removes. Instances are constructed explicitly and injected
// into consumers, never shared through package-level state.
//
// Failure semantics: Get, Set, Delete, the batch variants, pattern
// invalidation and Clear never return an error. Internal failures are
// logged and the call degrades to its safe default, so a cache failure is
// observationally identical to a cache miss. GetOrSet alone surfaces
// producer errors.
type Manager struct {
	registry   *Registry
	dist       DistributedStore
	serializer Serializer
	log        *logger.CtxZapLogger
	sf         singleflight.Group

	locals   map[string]*LocalStore
	localsMu sync.RWMutex

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64

	nsCounters sync.Map // namespace -> *namespaceCounters

	lastReset   time.Time
	lastResetMu sync.Mutex
}

type namespaceCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Snapshot point-in-time statistics
type Snapshot struct {
	Hits      int64                     `json:"hits"`
	Misses    int64                     `json:"misses"`
	Sets      int64                     `json:"sets"`
	Deletes   int64                     `json:"deletes"`
	Evictions int64                     `json:"evictions"`
	HitRate   float64                   `json:"hit_rate"`
	SizeBytes int64                     `json:"size_bytes"`
	LastReset time.Time                 `json:"last_reset"`
	ByName    map[string]NamespaceStats `json:"by_name"`
}

// NamespaceStats per-namespace statistics
type NamespaceStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Entries   int   `json:"entries"`
	SizeBytes int64 `json:"size_bytes"`
}

// NewManager creates a tiered cache manager. Local stores for every
// configured namespace are created eagerly; unknown namespaces get one
// lazily with the fallback policy.
func NewManager(cfg *Config, dist DistributedStore, log *logger.CtxZapLogger) *Manager {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	m := &Manager{
		registry:   NewRegistry(cfg),
		dist:       dist,
		serializer: NewJSONSerializer(),
		log:        log,
		locals:     make(map[string]*LocalStore),
		lastReset:  time.Now(),
	}
	for _, name := range m.registry.Names() {
		m.locals[name] = NewLocalStore(m.registry.Capacity(name))
	}
	return m
}

// SetSerializer replaces the serializer (default JSON). Call before use.
func (m *Manager) SetSerializer(s Serializer) {
	m.serializer = s
}

// Registry exposes the namespace policy registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// local returns the namespace's local store, creating it on first use
func (m *Manager) local(namespace string) *LocalStore {
	m.localsMu.RLock()
	store, ok := m.locals[namespace]
	m.localsMu.RUnlock()
	if ok {
		return store
	}

	m.localsMu.Lock()
	defer m.localsMu.Unlock()
	if store, ok = m.locals[namespace]; ok {
		return store
	}
	store = NewLocalStore(m.registry.Capacity(namespace))
	m.locals[namespace] = store
	return store
}

func (m *Manager) counters(namespace string) *namespaceCounters {
	if c, ok := m.nsCounters.Load(namespace); ok {
		return c.(*namespaceCounters)
	}
	c, _ := m.nsCounters.LoadOrStore(namespace, &namespaceCounters{})
	return c.(*namespaceCounters)
}

func normalize(namespace string) string {
	if namespace == "" {
		return DefaultNamespace
	}
	return namespace
}

// Get checks the local tier first, then the distributed tier. A distributed
// hit fills the local tier with the namespace's default TTL (read-through).
// Absent and failed are indistinguishable to the caller.
func (m *Manager) Get(ctx context.Context, namespace, key string) ([]byte, bool) {
	namespace = normalize(namespace)
	ns := m.counters(namespace)

	if value, ok := m.local(namespace).Get(key); ok {
		m.hits.Add(1)
		ns.hits.Add(1)
		return value, true
	}

	value, err := m.dist.Get(ctx, namespace, key)
	if err == nil {
		m.local(namespace).Set(key, value, m.registry.TTL(namespace))
		m.hits.Add(1)
		ns.hits.Add(1)
		return value, true
	}
	if !ErrCacheMiss.Is(err) {
		m.log.WarnCtx(ctx, "distributed get failed",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err))
	}

	m.misses.Add(1)
	ns.misses.Add(1)
	return nil, false
}

// GetValue fetches and deserializes into dest; false on miss or on a
// payload that does not deserialize
func (m *Manager) GetValue(ctx context.Context, namespace, key string, dest any) bool {
	data, ok := m.Get(ctx, namespace, key)
	if !ok {
		return false
	}
	if err := m.serializer.Deserialize(data, dest); err != nil {
		m.log.WarnCtx(ctx, "cached payload failed to deserialize",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

// Set writes through both tiers. The writes are independent: a distributed
// failure is logged but never rolls back the local write and never fails
// the call. ttl <= 0 selects the namespace default.
func (m *Manager) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) {
	namespace = normalize(namespace)
	if ttl <= 0 {
		ttl = m.registry.TTL(namespace)
	}

	m.local(namespace).Set(key, value, ttl)
	if err := m.dist.Set(ctx, namespace, key, value, ttl); err != nil {
		m.log.WarnCtx(ctx, "distributed set failed, local tier only",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err))
	}
	m.sets.Add(1)
}

// SetValue serializes and stores a value. A serialization failure is
// logged and nothing is written.
func (m *Manager) SetValue(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	data, err := m.serializer.Serialize(value)
	if err != nil {
		m.log.WarnCtx(ctx, "value failed to serialize, not cached",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err))
		return
	}
	m.Set(ctx, namespace, key, data, ttl)
}

// Delete removes the key from both tiers; either tier lacking it is fine
func (m *Manager) Delete(ctx context.Context, namespace, key string) {
	namespace = normalize(namespace)
	m.local(namespace).Delete(key)
	if err := m.dist.Delete(ctx, namespace, key); err != nil && !ErrCacheMiss.Is(err) {
		m.log.WarnCtx(ctx, "distributed delete failed",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Error(err))
	}
	m.deletes.Add(1)
}

// GetOrSet is the canonical read-through: on miss the producer runs exactly
// once (concurrent misses for the same key are collapsed), its result is
// stored through Set and returned. A producer error propagates unchanged
// and nothing is cached, so a later call retries fresh.
func (m *Manager) GetOrSet(ctx context.Context, namespace, key string, ttl time.Duration, producer ProducerFunc) ([]byte, error) {
	namespace = normalize(namespace)
	if producer == nil {
		return nil, ErrNilProducer
	}

	if value, ok := m.Get(ctx, namespace, key); ok {
		return value, nil
	}

	result, err, _ := m.sf.Do(namespace+":"+key, func() (any, error) {
		// another caller may have filled the key while we waited
		if value, ok := m.local(namespace).Get(key); ok {
			return value, nil
		}

		produced, err := producer(ctx)
		if err != nil {
			return nil, err
		}

		data, ok := produced.([]byte)
		if !ok {
			if data, err = m.serializer.Serialize(produced); err != nil {
				return nil, err
			}
		}
		m.Set(ctx, namespace, key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// BatchGet resolves as many keys as possible locally, then issues a single
// distributed lookup for the remainder, filling the local tier for
// anything it finds. The result contains only keys found in either tier.
func (m *Manager) BatchGet(ctx context.Context, namespace string, keys []string) map[string][]byte {
	namespace = normalize(namespace)
	ns := m.counters(namespace)
	local := m.local(namespace)

	result := make(map[string][]byte, len(keys))
	var remainder []string
	for _, key := range keys {
		if value, ok := local.Get(key); ok {
			result[key] = value
		} else {
			remainder = append(remainder, key)
		}
	}

	if len(remainder) > 0 {
		remote, err := m.dist.BatchGet(ctx, namespace, remainder)
		if err != nil {
			m.log.WarnCtx(ctx, "distributed batch get failed",
				zap.String("namespace", namespace),
				zap.Int("keys", len(remainder)),
				zap.Error(err))
		}
		ttl := m.registry.TTL(namespace)
		for key, value := range remote {
			local.Set(key, value, ttl)
			result[key] = value
		}
	}

	found := int64(len(result))
	m.hits.Add(found)
	ns.hits.Add(found)
	m.misses.Add(int64(len(keys)) - found)
	ns.misses.Add(int64(len(keys)) - found)
	return result
}

// BatchSet writes every entry to the local tier and issues one batched
// distributed write. ttl <= 0 selects the namespace default.
func (m *Manager) BatchSet(ctx context.Context, namespace string, entries map[string][]byte, ttl time.Duration) {
	namespace = normalize(namespace)
	if ttl <= 0 {
		ttl = m.registry.TTL(namespace)
	}

	local := m.local(namespace)
	for key, value := range entries {
		local.Set(key, value, ttl)
	}
	if err := m.dist.BatchSet(ctx, namespace, entries, ttl); err != nil {
		m.log.WarnCtx(ctx, "distributed batch set failed, local tier only",
			zap.String("namespace", namespace),
			zap.Int("entries", len(entries)),
			zap.Error(err))
	}
	m.sets.Add(int64(len(entries)))
}

// InvalidatePattern removes every local key containing the substring and
// every distributed key under the namespace matching the equivalent
// wildcard pattern
func (m *Manager) InvalidatePattern(ctx context.Context, namespace, substring string) {
	namespace = normalize(namespace)
	local := m.local(namespace)

	keys := local.KeysMatching(substring)
	for _, key := range keys {
		local.Delete(key)
	}
	if err := m.dist.DeleteMatching(ctx, namespace, "*"+substring+"*"); err != nil {
		m.log.WarnCtx(ctx, "distributed pattern invalidation failed",
			zap.String("namespace", namespace),
			zap.String("pattern", substring),
			zap.Error(err))
	}
	m.deletes.Add(int64(len(keys)))
	m.log.DebugCtx(ctx, "pattern invalidated",
		zap.String("namespace", namespace),
		zap.String("pattern", substring),
		zap.Int("local_keys", len(keys)))
}

// InvalidateByTags invalidates once per tag. Tags are treated purely as
// substrings of keys; no tag index is maintained, so a tag that happens to
// be a substring of an unrelated key invalidates that key too. Callers
// rely on this behavior.
func (m *Manager) InvalidateByTags(ctx context.Context, namespace string, tags []string) {
	for _, tag := range tags {
		m.InvalidatePattern(ctx, namespace, tag)
	}
}

// Clear wipes the given namespaces in both tiers, or every known
// namespace when none are given
func (m *Manager) Clear(ctx context.Context, namespaces ...string) {
	if len(namespaces) == 0 {
		m.localsMu.RLock()
		for name := range m.locals {
			namespaces = append(namespaces, name)
		}
		m.localsMu.RUnlock()
	}
	for _, namespace := range namespaces {
		namespace = normalize(namespace)
		m.local(namespace).Clear()
		if err := m.dist.ClearNamespace(ctx, namespace); err != nil {
			m.log.WarnCtx(ctx, "distributed namespace clear failed",
				zap.String("namespace", namespace),
				zap.Error(err))
		}
	}
}

// PurgeExpired sweeps expired entries out of every local store and returns
// the total removed. Runs on the maintenance timer.
func (m *Manager) PurgeExpired() int {
	m.localsMu.RLock()
	defer m.localsMu.RUnlock()
	purged := 0
	for _, store := range m.locals {
		purged += store.PurgeExpired()
	}
	return purged
}

// PingDistributed probes the distributed tier (recovery probe, health check)
func (m *Manager) PingDistributed(ctx context.Context) error {
	return m.dist.Ping(ctx)
}

// DistributedDegraded reports whether the distributed tier is degraded
func (m *Manager) DistributedDegraded() bool {
	return m.dist.Degraded()
}

// Stats returns the current counters plus derived hit rate, per-namespace
// entry counts and a memory footprint estimate
func (m *Manager) Stats() *Snapshot {
	m.lastResetMu.Lock()
	lastReset := m.lastReset
	m.lastResetMu.Unlock()

	snap := &Snapshot{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Sets:      m.sets.Load(),
		Deletes:   m.deletes.Load(),
		LastReset: lastReset,
		ByName:    make(map[string]NamespaceStats),
	}
	if total := snap.Hits + snap.Misses; total > 0 {
		snap.HitRate = float64(snap.Hits) / float64(total)
	}

	m.localsMu.RLock()
	for name, store := range m.locals {
		stats := NamespaceStats{
			Entries:   store.Len(),
			SizeBytes: store.SizeBytes(),
		}
		if c, ok := m.nsCounters.Load(name); ok {
			counters := c.(*namespaceCounters)
			stats.Hits = counters.hits.Load()
			stats.Misses = counters.misses.Load()
		}
		snap.ByName[name] = stats
		snap.Evictions += store.Evictions()
		snap.SizeBytes += stats.SizeBytes
	}
	m.localsMu.RUnlock()

	return snap
}

// ResetStats zeroes the counters (not the cached data) and stamps the
// rolling window
func (m *Manager) ResetStats() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.sets.Store(0)
	m.deletes.Store(0)
	m.nsCounters.Range(func(key, value any) bool {
		c := value.(*namespaceCounters)
		c.hits.Store(0)
		c.misses.Store(0)
		return true
	})
	m.localsMu.RLock()
	for _, store := range m.locals {
		store.ResetEvictions()
	}
	m.localsMu.RUnlock()
	m.lastResetMu.Lock()
	m.lastReset = time.Now()
	m.lastResetMu.Unlock()
}

// Close releases the distributed store and drops local state
func (m *Manager) Close() error {
	m.localsMu.Lock()
	for _, store := range m.locals {
		store.Clear()
	}
	m.localsMu.Unlock()
	return m.dist.Close()
}
