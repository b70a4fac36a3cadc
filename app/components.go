package app

import (
	"context"

	"github.com/puzzleforge/liveops-cache/component"
	"github.com/puzzleforge/liveops-cache/config"
	"github.com/puzzleforge/liveops-cache/logger"
)

// Core component names
const (
	ComponentConfig = "config"
	ComponentLogger = "logger"
)

// ConfigComponent loads the configuration file and serves it to every
// other component through the component.ConfigLoader interface
type ConfigComponent struct {
	path      string
	envPrefix string
	loader    *config.Loader
}

// NewConfigComponent creates the config component
func NewConfigComponent(path, envPrefix string) *ConfigComponent {
	return &ConfigComponent{path: path, envPrefix: envPrefix}
}

// Name returns the component name
func (c *ConfigComponent) Name() string { return ComponentConfig }

// DependsOn config depends on nothing
func (c *ConfigComponent) DependsOn() []string { return nil }

// Init loads the configuration file
func (c *ConfigComponent) Init(ctx context.Context, _ component.ConfigLoader) error {
	loader := config.NewLoader(c.path, c.envPrefix)
	if err := loader.Load(); err != nil {
		return err
	}
	c.loader = loader
	return nil
}

// Start no-op
func (c *ConfigComponent) Start(ctx context.Context) error { return nil }

// Stop no-op
func (c *ConfigComponent) Stop(ctx context.Context) error { return nil }

// Loader returns the underlying loader
func (c *ConfigComponent) Loader() *config.Loader { return c.loader }

// Unmarshal implements component.ConfigLoader
func (c *ConfigComponent) Unmarshal(key string, v any) error {
	if c.loader == nil {
		return config.ErrLoad.WithMsg("configuration not loaded")
	}
	return c.loader.Unmarshal(key, v)
}

// IsSet implements component.ConfigLoader
func (c *ConfigComponent) IsSet(key string) bool {
	return c.loader != nil && c.loader.IsSet(key)
}

// LoggerComponent initializes the global logger manager from the
// "logger" configuration subtree
type LoggerComponent struct {
	log *logger.CtxZapLogger
}

// NewLoggerComponent creates the logger component
func NewLoggerComponent() *LoggerComponent {
	return &LoggerComponent{}
}

// Name returns the component name
func (l *LoggerComponent) Name() string { return ComponentLogger }

// DependsOn logger reads its settings from config
func (l *LoggerComponent) DependsOn() []string { return []string{ComponentConfig} }

// Init initializes the global logger manager
func (l *LoggerComponent) Init(ctx context.Context, loader component.ConfigLoader) error {
	cfg := logger.Config{}
	if loader != nil && loader.IsSet("logger") {
		if err := loader.Unmarshal("logger", &cfg); err != nil {
			return err
		}
	}
	logger.InitManager(cfg)
	l.log = logger.GetLogger("app")
	return nil
}

// Start no-op
func (l *LoggerComponent) Start(ctx context.Context) error { return nil }

// Stop flushes and closes every logger
func (l *LoggerComponent) Stop(ctx context.Context) error {
	logger.CloseAll()
	return nil
}

// Logger returns the application logger
func (l *LoggerComponent) Logger() *logger.CtxZapLogger { return l.log }
