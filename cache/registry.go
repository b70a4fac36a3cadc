package cache

import (
	"sort"
	"time"
)

// Registry maps a logical namespace name to its capacity and TTL policy.
// Built once from static configuration, never mutated afterwards, so
// lookups are lock-free. Unknown namespaces fall back to the global
// defaults; a lookup never fails.
type Registry struct {
	namespaces      map[string]NamespaceConfig
	defaultTTL      time.Duration
	defaultCapacity int
}

// NewRegistry builds a registry from an already-defaulted configuration
func NewRegistry(cfg *Config) *Registry {
	namespaces := make(map[string]NamespaceConfig, len(cfg.Namespaces))
	for name, ns := range cfg.Namespaces {
		namespaces[name] = ns
	}
	return &Registry{
		namespaces:      namespaces,
		defaultTTL:      cfg.DefaultTTL,
		defaultCapacity: cfg.DefaultCapacity,
	}
}

// TTL returns the default TTL for a namespace
func (r *Registry) TTL(namespace string) time.Duration {
	if ns, ok := r.namespaces[namespace]; ok {
		return ns.TTL
	}
	return r.defaultTTL
}

// Capacity returns the local-tier capacity for a namespace
func (r *Registry) Capacity(namespace string) int {
	if ns, ok := r.namespaces[namespace]; ok {
		return ns.Capacity
	}
	return r.defaultCapacity
}

// Names returns the configured namespace names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
