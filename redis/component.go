package redis

import (
	"context"

	"go.uber.org/zap"

	"github.com/puzzleforge/liveops-cache/component"
	"github.com/puzzleforge/liveops-cache/logger"
)

// ComponentName component name
const ComponentName = "redis"

// Component wires the redis manager into the component lifecycle.
// With no "redis" configuration subtree the component is inert and
// Manager returns nil, which downstream consumers treat as
// local-tier-only operation.
type Component struct {
	configs map[string]Config
	manager *Manager
	log     *logger.CtxZapLogger
}

// NewComponent creates the redis component
func NewComponent() *Component {
	return &Component{}
}

// Name returns the component name
func (c *Component) Name() string {
	return ComponentName
}

// DependsOn declares component dependencies
func (c *Component) DependsOn() []string {
	return []string{"config", "logger"}
}

// Init reads the instance configurations
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.log = logger.GetLogger(ComponentName)
	if loader == nil || !loader.IsSet(ComponentName) {
		return nil
	}
	return loader.Unmarshal(ComponentName, &c.configs)
}

// Start connects every configured instance; construction fails fast on
// an unreachable one
func (c *Component) Start(ctx context.Context) error {
	if len(c.configs) == 0 {
		c.log.InfoCtx(ctx, "no redis instances configured")
		return nil
	}
	manager, err := NewManager(c.configs, c.log)
	if err != nil {
		return err
	}
	c.manager = manager
	c.log.InfoCtx(ctx, "redis component started",
		zap.Strings("instances", manager.InstanceNames()))
	return nil
}

// Stop closes every connection; safe to call more than once
func (c *Component) Stop(ctx context.Context) error {
	if c.manager != nil {
		if err := c.manager.Close(); err != nil {
			return err
		}
		c.manager = nil
	}
	return nil
}

// Manager returns the manager, nil when no instances are configured
func (c *Component) Manager() *Manager {
	return c.manager
}

// GetHealthChecker exposes the redis health check
func (c *Component) GetHealthChecker() component.HealthChecker {
	return NewHealthChecker(c.manager)
}
