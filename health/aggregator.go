package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator runs registered checkers and merges their results.
// A single failed check degrades the aggregate status; it does not make
// it unhealthy unless every check failed.
type Aggregator struct {
	checkers []Checker
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewAggregator creates an aggregator with a per-check timeout
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Aggregator{timeout: timeout}
}

// Register adds a checker
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, c)
}

// Check runs all registered checkers
func (a *Aggregator) Check(ctx context.Context) *Response {
	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	start := time.Now()
	resp := &Response{
		Status:    StatusHealthy,
		Timestamp: start,
		Checks:    make(map[string]CheckResult, len(checkers)),
	}

	failed := 0
	for _, c := range checkers {
		result := a.runCheck(ctx, c)
		resp.Checks[c.Name()] = result
		if result.Status != StatusHealthy {
			failed++
		}
	}

	switch {
	case len(checkers) == 0 || failed == 0:
		resp.Status = StatusHealthy
	case failed == len(checkers):
		resp.Status = StatusUnhealthy
	default:
		resp.Status = StatusDegraded
	}

	resp.Duration = time.Since(start)
	return resp
}

func (a *Aggregator) runCheck(ctx context.Context, c Checker) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	result := CheckResult{
		Name:      c.Name(),
		Status:    StatusHealthy,
		Timestamp: start,
	}
	if err := c.Check(checkCtx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}
