// Package config loads application configuration from a YAML file with
// environment variable overrides (viper).
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/puzzleforge/liveops-cache/errcode"
)

// Config module error codes (72xxxx)
const ModuleCode = 72

var (
	ErrLoad      = errcode.New(ModuleCode, 1, "config", "failed to load configuration")
	ErrUnmarshal = errcode.New(ModuleCode, 2, "config", "failed to unmarshal configuration")
)

// Loader viper-backed configuration loader.
// Implements component.ConfigLoader.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a loader for the given file path.
// envPrefix enables environment overrides: with prefix "APP" the key
// "cache.default_ttl" is overridable via APP_CACHE_DEFAULT_TTL.
func NewLoader(path, envPrefix string) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return &Loader{v: v, path: path}
}

// Load reads and parses the configuration file
func (l *Loader) Load() error {
	if err := l.v.ReadInConfig(); err != nil {
		return ErrLoad.Wrapf(err, "failed to load %s", l.path)
	}
	return nil
}

// Unmarshal parses the configuration subtree under key into v.
// An empty key unmarshals the whole configuration.
func (l *Loader) Unmarshal(key string, v any) error {
	var err error
	if key == "" {
		err = l.v.Unmarshal(v)
	} else {
		err = l.v.UnmarshalKey(key, v)
	}
	if err != nil {
		return ErrUnmarshal.Wrap(err)
	}
	return nil
}

// IsSet reports whether the key exists
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// GetString gets a string value
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt gets an integer value
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool gets a boolean value
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// AllSettings returns the merged configuration map
func (l *Loader) AllSettings() map[string]any {
	return l.v.AllSettings()
}

// GetViper exposes the underlying viper instance
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}
