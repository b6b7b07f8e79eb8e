// Package config loads host configuration from TOML or YAML files
// with environment variable overrides.
package config

import (
	"os"
	"strconv"
)

// Environment variables recognized as overrides. They win over file
// values, which win over defaults.
const (
	EnvPluginPath = "FLOWSCOPE_PLUGIN_PATH"
	EnvLogLevel   = "FLOWSCOPE_LOG_LEVEL"
	EnvBare       = "FLOWSCOPE_BARE"
)

// PluginConfig selects and parameterizes one dynamic plugin.
type PluginConfig struct {
	// Name of the plugin as declared in its bundle manifest.
	Name string `toml:"name" yaml:"name"`

	// Options passed through to the plugin, opaque to the host.
	Options map[string]any `toml:"options" yaml:"options"`
}

// Config is the host configuration.
type Config struct {
	// LogLevel is the minimum log level ("debug", "info", "warn",
	// "error").
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// PluginPath is a colon-separated list of directories searched
	// for plugin bundles.
	PluginPath string `toml:"plugin_path" yaml:"plugin_path"`

	// Bare disables activating every discovered plugin; only plugins
	// named in Plugins are activated.
	Bare bool `toml:"bare" yaml:"bare"`

	// Plugins are explicitly requested dynamic plugins.
	Plugins []PluginConfig `toml:"plugins" yaml:"plugins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		PluginPath: defaultPluginPath(),
	}
}

// defaultPluginPath returns the user plugin directory, or empty when
// no home directory is resolvable.
func defaultPluginPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.flowscope/plugins"
}

// applyEnv overlays recognized environment variables.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvPluginPath); ok {
		c.PluginPath = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvBare); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Bare = b
		}
	}
}

// RequestedPlugins returns the names of explicitly requested plugins.
func (c *Config) RequestedPlugins() []string {
	names := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		names = append(names, p.Name)
	}
	return names
}

// PluginOptions returns the option map for a named plugin, or nil.
func (c *Config) PluginOptions(name string) map[string]any {
	for _, p := range c.Plugins {
		if p.Name == name {
			return p.Options
		}
	}
	return nil
}
