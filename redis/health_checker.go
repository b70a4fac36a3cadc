package redis

import (
	"context"
	"fmt"
)

// HealthChecker pings every managed Redis instance
type HealthChecker struct {
	manager *Manager
}

// NewHealthChecker creates a Redis health checker
func NewHealthChecker(manager *Manager) *HealthChecker {
	return &HealthChecker{manager: manager}
}

// Name check item name
func (h *HealthChecker) Name() string {
	return "redis"
}

// Check executes the health check
func (h *HealthChecker) Check(ctx context.Context) error {
	if h.manager == nil {
		return fmt.Errorf("redis manager not initialized")
	}
	return h.manager.Ping(ctx)
}
