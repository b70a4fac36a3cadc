// Package health provides unified health check types for the cache stack.
package health

import (
	"time"

	"github.com/puzzleforge/liveops-cache/component"
)

// Status health status enum
type Status string

const (
	// StatusHealthy all checks passed
	StatusHealthy Status = "healthy"
	// StatusDegraded partial functionality unavailable (e.g. the cache is
	// serving from the local tier only); never fatal to the host process
	StatusDegraded Status = "degraded"
	// StatusUnhealthy checks failed
	StatusUnhealthy Status = "unhealthy"
)

// Checker is an alias for component.HealthChecker
type Checker = component.HealthChecker

// CheckResult result of a single check item
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Response aggregate health check response
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
}

// IsHealthy reports whether the aggregate status is healthy
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// IsDegraded reports whether the aggregate status is degraded
func (r *Response) IsDegraded() bool {
	return r.Status == StatusDegraded
}
