package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultNamespace used when a caller omits the namespace
const DefaultNamespace = "default"

// Fallbacks applied to namespaces absent from the configuration
const (
	FallbackTTL      = 10 * time.Minute
	FallbackCapacity = 1000
)

// NamespaceConfig capacity and TTL policy for one cache category
type NamespaceConfig struct {
	// Capacity maximum entry count of the local tier
	Capacity int `mapstructure:"capacity"`

	// TTL default expiry for entries written without an explicit TTL
	TTL time.Duration `mapstructure:"ttl"`
}

// WarmingConfig periodic warming settings
type WarmingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`

	// PoolSize goroutine pool size for strategy execution
	PoolSize int `mapstructure:"pool_size"`
}

// ReportingConfig stats snapshot logging settings
type ReportingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`

	// ResetAfter rolling window after which counters are reset
	ResetAfter time.Duration `mapstructure:"reset_after"`
}

// Config cache component configuration
type Config struct {
	// DefaultTTL fallback TTL for unknown namespaces
	DefaultTTL time.Duration `mapstructure:"default_ttl"`

	// DefaultCapacity fallback local capacity for unknown namespaces
	DefaultCapacity int `mapstructure:"default_capacity"`

	// Namespaces per-category policy; merged over DefaultNamespaces()
	Namespaces map[string]NamespaceConfig `mapstructure:"namespaces"`

	// RedisInstance name of the redis.Manager instance backing the
	// distributed tier; empty runs local-tier-only
	RedisInstance string `mapstructure:"redis_instance"`

	// SweepInterval period of the local-tier expired entry sweep
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// ProbeInterval period of the distributed-tier recovery probe
	ProbeInterval time.Duration `mapstructure:"probe_interval"`

	Warming   WarmingConfig   `mapstructure:"warming"`
	Reporting ReportingConfig `mapstructure:"reporting"`
}

// DefaultNamespaces returns the recognized cache categories and their
// policies: content is large and long-lived, personalization and
// predictions are short-lived, analytics and market sit in between,
// profiles stay warm for an active session.
func DefaultNamespaces() map[string]NamespaceConfig {
	return map[string]NamespaceConfig{
		"content":         {Capacity: 2000, TTL: time.Hour},
		"personalization": {Capacity: 2000, TTL: 10 * time.Minute},
		"predictions":     {Capacity: 2000, TTL: 5 * time.Minute},
		"analytics":       {Capacity: 1000, TTL: 30 * time.Minute},
		"market":          {Capacity: 1000, TTL: 10 * time.Minute},
		"profiles":        {Capacity: 2000, TTL: 30 * time.Minute},
		DefaultNamespace:  {Capacity: FallbackCapacity, TTL: FallbackTTL},
	}
}

// ApplyDefaults merges the recognized namespaces under the configured ones
// and fills zero-value fields
func (c *Config) ApplyDefaults() {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = FallbackTTL
	}
	if c.DefaultCapacity <= 0 {
		c.DefaultCapacity = FallbackCapacity
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = 30 * time.Second
	}
	if c.Warming.Interval <= 0 {
		c.Warming.Interval = 15 * time.Minute
	}
	if c.Warming.PoolSize <= 0 {
		c.Warming.PoolSize = 4
	}
	if c.Reporting.Interval <= 0 {
		c.Reporting.Interval = 5 * time.Minute
	}
	if c.Reporting.ResetAfter <= 0 {
		c.Reporting.ResetAfter = time.Hour
	}

	merged := DefaultNamespaces()
	for name, ns := range c.Namespaces {
		base := merged[name]
		if ns.Capacity > 0 {
			base.Capacity = ns.Capacity
		}
		if ns.TTL > 0 {
			base.TTL = ns.TTL
		}
		merged[name] = base
	}
	c.Namespaces = merged
}

// Validate checks the configuration. Call after ApplyDefaults.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.DefaultCapacity, validation.Min(1)),
		validation.Field(&c.DefaultTTL, validation.By(positiveDuration)),
	)
	if err != nil {
		return ErrConfigInvalid.Wrap(err)
	}

	for name, ns := range c.Namespaces {
		if err := validation.Validate(ns.Capacity, validation.Min(1)); err != nil {
			return ErrConfigInvalid.Wrapf(err, "namespace %s: invalid capacity", name)
		}
		if ns.TTL <= 0 {
			return ErrConfigInvalid.WithMsgf("namespace %s: ttl must be positive", name)
		}
	}
	return nil
}

func positiveDuration(value any) error {
	d, ok := value.(time.Duration)
	if !ok || d <= 0 {
		return validation.NewError("validation_positive_duration", "must be a positive duration")
	}
	return nil
}
