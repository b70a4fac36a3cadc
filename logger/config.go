package logger

import (
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// Config logger manager configuration
type Config struct {
	// AppName application name, injected into every log line
	AppName string `mapstructure:"app_name"`

	// Level minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Encoding log encoding: json or console
	Encoding string `mapstructure:"encoding"`

	// EnableConsole write logs to stdout
	EnableConsole bool `mapstructure:"enable_console"`

	// EnableFile write logs to per-module rotating files
	EnableFile bool `mapstructure:"enable_file"`

	// Dir base directory for log files
	Dir string `mapstructure:"dir"`

	// Rotation settings (lumberjack)
	MaxSize    int  `mapstructure:"max_size"`    // MB per file
	MaxBackups int  `mapstructure:"max_backups"` // retained files
	MaxAge     int  `mapstructure:"max_age"`     // retained days
	Compress   bool `mapstructure:"compress"`

	// EnableCaller add caller file:line to log lines
	EnableCaller bool `mapstructure:"enable_caller"`
}

// DefaultConfig returns a console-only development configuration
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-value fields with defaults
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "json"
	}
	if c.Dir == "" {
		c.Dir = "logs"
	}
	if !c.EnableConsole && !c.EnableFile {
		c.EnableConsole = true
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 5
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 7
	}
}

// ParseLevel converts a level string to a zapcore.Level
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath returns the log file path for a module and kind ("info"/"error")
func (c *Config) filePath(module, kind string) string {
	return filepath.Join(c.Dir, module, module+"-"+kind+".log")
}
