package cache

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/logger"
)

// scanBatchSize page size for SCAN-based pattern deletes
const scanBatchSize = 100

// RedisStore distributed tier backed by Redis. Keys are prefixed with
// "namespace:".
//
// When Redis is unreachable the store runs degraded: every read reports a
// miss and every write succeeds without effect, so the manager keeps
// operating on the local tier alone. Ping rechecks connectivity and flips
// the flag back once the server recovers.
type RedisStore struct {
	client   *redis.Client
	degraded atomic.Bool
	log      *logger.CtxZapLogger
}

// NewRedisStore creates the adapter and probes connectivity once. A nil
// client yields a permanently degraded store (local-tier-only deployments).
func NewRedisStore(client *redis.Client, log *logger.CtxZapLogger) *RedisStore {
	s := &RedisStore{client: client, log: log}
	if client == nil {
		s.degraded.Store(true)
		return s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		s.degraded.Store(true)
		if log != nil {
			log.Warn("distributed cache unreachable, starting degraded", zap.Error(err))
		}
	}
	return s
}

func (s *RedisStore) fullKey(namespace, key string) string {
	return namespace + ":" + key
}

// Get fetches a value; ErrCacheMiss when absent or degraded
func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if s.degraded.Load() {
		return nil, ErrCacheMiss
	}
	data, err := s.client.Get(ctx, s.fullKey(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}
	return data, nil
}

// Set stores a value with a TTL; a no-op success when degraded
func (s *RedisStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if s.degraded.Load() {
		return nil
	}
	if err := s.client.Set(ctx, s.fullKey(namespace, key), value, ttl).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

// Delete removes a key; tolerates absence
func (s *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	if s.degraded.Load() {
		return nil
	}
	if err := s.client.Del(ctx, s.fullKey(namespace, key)).Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// BatchGet resolves many keys with a single MGET
func (s *RedisStore) BatchGet(ctx context.Context, namespace string, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if s.degraded.Load() || len(keys) == 0 {
		return result, nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = s.fullKey(namespace, key)
	}
	values, err := s.client.MGet(ctx, fullKeys...).Result()
	if err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			result[keys[i]] = []byte(str)
		}
	}
	return result, nil
}

// BatchSet writes many entries with a single pipelined round trip
func (s *RedisStore) BatchSet(ctx context.Context, namespace string, entries map[string][]byte, ttl time.Duration) error {
	if s.degraded.Load() || len(entries) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for key, value := range entries {
		pipe.Set(ctx, s.fullKey(namespace, key), value, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

// DeleteMatching removes keys under the namespace matching a wildcard
// pattern, using SCAN to avoid blocking the server
func (s *RedisStore) DeleteMatching(ctx context.Context, namespace, pattern string) error {
	if s.degraded.Load() {
		return nil
	}
	if !strings.Contains(pattern, "*") {
		return s.Delete(ctx, namespace, pattern)
	}

	fullPattern := s.fullKey(namespace, pattern)
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, fullPattern, scanBatchSize).Result()
		if err != nil {
			return ErrStoreDelete.Wrap(err)
		}
		if len(batch) > 0 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return ErrStoreDelete.Wrap(err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// ClearNamespace removes every key under the namespace prefix
func (s *RedisStore) ClearNamespace(ctx context.Context, namespace string) error {
	return s.DeleteMatching(ctx, namespace, "*")
}

// ClearAll flushes the entire distributed store. Operator escape hatch.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	if s.degraded.Load() {
		return nil
	}
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// Ping probes connectivity and updates the degraded flag in both
// directions, so recovery is automatic once the server is back
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return ErrStoreGet.WithMsg("no distributed store configured")
	}
	err := s.client.Ping(ctx).Err()
	wasDegraded := s.degraded.Swap(err != nil)
	if s.log != nil {
		if err != nil && !wasDegraded {
			s.log.WarnCtx(ctx, "distributed cache unreachable, entering degraded mode", zap.Error(err))
		}
		if err == nil && wasDegraded {
			s.log.InfoCtx(ctx, "distributed cache reachable again, leaving degraded mode")
		}
	}
	if err != nil {
		return ErrStoreGet.Wrap(err)
	}
	return nil
}

// Degraded reports whether the store is running in degraded mode
func (s *RedisStore) Degraded() bool {
	return s.degraded.Load()
}

// Close releases nothing: the client's lifecycle belongs to the redis.Manager
func (s *RedisStore) Close() error {
	return nil
}
