// Package component provides component interface definitions.
// This is the bottom-most package and depends on no other package,
// which avoids import cycles.
package component

import "context"

// Component unified lifecycle management interface
//
// Component lifecycle: Init → Start → Stop
type Component interface {
	// Name component name (unique identifier)
	Name() string

	// DependsOn declares the names of components this one depends on.
	//
	// Optional dependencies use the "optional:" prefix:
	//
	//	return []string{
	//	    "config",          // hard dependency
	//	    "logger",          // hard dependency
	//	    "optional:redis",  // skipped when not registered
	//	}
	DependsOn() []string

	// Init initializes the component (creates resources, no outward services).
	// The component reads its own configuration from the loader.
	Init(ctx context.Context, loader ConfigLoader) error

	// Start starts the component (connects to external services, starts timers).
	Start(ctx context.Context) error

	// Stop stops the component (releases resources, must be idempotent).
	Stop(ctx context.Context) error
}

// ConfigLoader configuration access for components
type ConfigLoader interface {
	// Unmarshal parses the configuration subtree under key into v
	Unmarshal(key string, v any) error

	// IsSet reports whether the key exists in the configuration
	IsSet(key string) bool
}

// HealthChecker optional health check interface for components
type HealthChecker interface {
	// Check performs the health check; nil means healthy
	Check(ctx context.Context) error

	// Name returns the check item name (e.g. "redis", "cache")
	Name() string
}

// HealthCheckProvider optional interface for components that expose a checker
type HealthCheckProvider interface {
	GetHealthChecker() HealthChecker
}
