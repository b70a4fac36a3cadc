// Package redis manages named Redis client instances for the cache stack.
package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/logger"
)

// Manager holds one client per configured instance name
type Manager struct {
	clients map[string]*redis.Client
	configs map[string]Config
	logger  *logger.CtxZapLogger
	mu      sync.RWMutex
}

// NewManager creates clients for every configured instance and verifies
// connectivity with a ping. Unreachable instances fail construction; a
// caller that tolerates outages should use the cache adapter's degraded
// mode instead.
func NewManager(configs map[string]Config, log *logger.CtxZapLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx := context.Background()
	m := &Manager{
		clients: make(map[string]*redis.Client),
		configs: make(map[string]Config),
		logger:  log,
	}

	for name, cfg := range configs {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			m.closeAll()
			return nil, fmt.Errorf("invalid config for %s: %w", name, err)
		}

		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			m.closeAll()
			return nil, fmt.Errorf("ping %s failed: %w", name, err)
		}

		m.clients[name] = client
		m.configs[name] = cfg
		m.logger.DebugCtx(ctx, "redis connection established",
			zap.String("name", name),
			zap.String("addr", cfg.Addr))
	}

	return m, nil
}

// Client returns the client for an instance name, or nil when unknown
func (m *Manager) Client(name string) *redis.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[name]
}

// InstanceNames returns all configured instance names
func (m *Manager) InstanceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	return names
}

// Ping checks every instance
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, client := range m.clients {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping %s failed: %w", name, err)
		}
	}
	return nil
}

// Close closes all connections
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAll()
	return nil
}

func (m *Manager) closeAll() {
	ctx := context.Background()
	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			m.logger.ErrorCtx(ctx, "failed to close redis connection",
				zap.String("name", name),
				zap.Error(err))
		}
	}
	m.clients = make(map[string]*redis.Client)
}

// Shutdown implements the DI container's shutdown hook
func (m *Manager) Shutdown() error {
	return m.Close()
}
