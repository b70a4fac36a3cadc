// Package app runs components through their lifecycle: Init and Start in
// dependency order, Stop in reverse. The cache daemon and any service
// embedding the cache stack use it instead of hand-ordering startup code.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/component"
	"github.com/puzzleforge/liveops-cache/health"
	"github.com/puzzleforge/liveops-cache/logger"
)

// optionalPrefix marks a dependency that is skipped when not registered
const optionalPrefix = "optional:"

// stopTimeout bound on the whole shutdown sequence
const stopTimeout = 30 * time.Second

// Runner owns a set of components and their lifecycle
type Runner struct {
	mu         sync.Mutex
	components map[string]component.Component
	started    []component.Component // start order, for reverse shutdown
	loader     component.ConfigLoader
	log        *logger.CtxZapLogger
}

// NewRunner creates a runner; loader is handed to every component's Init
func NewRunner(loader component.ConfigLoader, log *logger.CtxZapLogger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		components: make(map[string]component.Component),
		loader:     loader,
		log:        log,
	}
}

// Register adds a component; duplicate names are rejected
func (r *Runner) Register(comp component.Component) error {
	if comp == nil || comp.Name() == "" {
		return fmt.Errorf("component must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[comp.Name()]; exists {
		return fmt.Errorf("component %q already registered", comp.Name())
	}
	r.components[comp.Name()] = comp
	return nil
}

// MustRegister registers a component or panics. For wiring at startup,
// where a duplicate is a programming error.
func (r *Runner) MustRegister(comp component.Component) {
	if err := r.Register(comp); err != nil {
		panic(err)
	}
}

// Get returns a registered component by name
func (r *Runner) Get(name string) (component.Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comp, ok := r.components[name]
	return comp, ok
}

// Startup initializes and starts every component in dependency order.
// On failure the components already started are stopped in reverse.
func (r *Runner) Startup(ctx context.Context) error {
	order, err := r.resolveOrder()
	if err != nil {
		return err
	}

	for _, comp := range order {
		r.log.DebugCtx(ctx, "initializing component", zap.String("component", comp.Name()))
		if err := comp.Init(ctx, r.loader); err != nil {
			r.rollback(ctx)
			return fmt.Errorf("component %q init failed: %w", comp.Name(), err)
		}
	}

	for _, comp := range order {
		r.log.DebugCtx(ctx, "starting component", zap.String("component", comp.Name()))
		if err := comp.Start(ctx); err != nil {
			r.rollback(ctx)
			return fmt.Errorf("component %q start failed: %w", comp.Name(), err)
		}
		r.mu.Lock()
		r.started = append(r.started, comp)
		r.mu.Unlock()
	}

	r.log.InfoCtx(ctx, "all components started", zap.Int("count", len(order)))
	return nil
}

// Shutdown stops started components in reverse order. Stop errors are
// logged, never propagated; every component gets its chance to clean up.
func (r *Runner) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	r.mu.Lock()
	started := make([]component.Component, len(r.started))
	copy(started, r.started)
	r.started = nil
	r.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		comp := started[i]
		r.log.DebugCtx(ctx, "stopping component", zap.String("component", comp.Name()))
		if err := comp.Stop(ctx); err != nil {
			r.log.ErrorCtx(ctx, "component stop failed",
				zap.String("component", comp.Name()),
				zap.Error(err))
		}
	}
	r.log.InfoCtx(ctx, "all components stopped")
}

// Run starts everything and blocks until the context is canceled or a
// SIGINT/SIGTERM arrives, then shuts down
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Startup(ctx); err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()

	r.Shutdown(context.Background())
	return nil
}

// HealthAggregator collects the checkers of every component exposing one
func (r *Runner) HealthAggregator() *health.Aggregator {
	r.mu.Lock()
	defer r.mu.Unlock()

	agg := health.NewAggregator(0)
	for _, comp := range r.components {
		if provider, ok := comp.(component.HealthCheckProvider); ok {
			agg.Register(provider.GetHealthChecker())
		}
	}
	return agg
}

// rollback stops whatever already started after a startup failure
func (r *Runner) rollback(ctx context.Context) {
	r.Shutdown(ctx)
}

// resolveOrder topologically sorts the components by their declared
// dependencies. A missing hard dependency is an error; a missing
// optional one is skipped.
func (r *Runner) resolveOrder() ([]component.Component, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inDegree := make(map[string]int, len(r.components))
	dependents := make(map[string][]string, len(r.components))
	for name := range r.components {
		inDegree[name] = 0
	}

	for name, comp := range r.components {
		for _, dep := range comp.DependsOn() {
			depName := dep
			optional := false
			if strings.HasPrefix(dep, optionalPrefix) {
				depName = strings.TrimPrefix(dep, optionalPrefix)
				optional = true
			}
			if _, ok := r.components[depName]; !ok {
				if optional {
					continue
				}
				return nil, fmt.Errorf("component %q depends on unregistered %q", name, depName)
			}
			dependents[depName] = append(dependents[depName], name)
			inDegree[name]++
		}
	}

	var order []component.Component
	processed := make(map[string]bool, len(r.components))
	for len(processed) < len(r.components) {
		progressed := false
		for name, degree := range inDegree {
			if processed[name] || degree != 0 {
				continue
			}
			processed[name] = true
			progressed = true
			order = append(order, r.components[name])
			for _, next := range dependents[name] {
				inDegree[next]--
			}
		}
		if !progressed {
			return nil, fmt.Errorf("dependency cycle among components")
		}
	}
	return order, nil
}
