package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Bare {
		t.Error("Bare defaults to true")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "flowscope.toml", `
log_level = "debug"
plugin_path = "/opt/flowscope/plugins"
bare = true

[[plugins]]
name = "http-probe"

[plugins.options]
ports = [80, 8080]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.PluginPath != "/opt/flowscope/plugins" || !cfg.Bare {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Plugins) != 1 || cfg.Plugins[0].Name != "http-probe" {
		t.Fatalf("Plugins = %v", cfg.Plugins)
	}
	if cfg.PluginOptions("http-probe") == nil {
		t.Error("PluginOptions lost the options table")
	}
	if cfg.PluginOptions("absent") != nil {
		t.Error("PluginOptions invented options for an unknown plugin")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "flowscope.yaml", `
log_level: warn
plugins:
  - name: dns-tap
  - name: tls-probe
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	names := cfg.RequestedPlugins()
	if len(names) != 2 || names[0] != "dns-tap" || names[1] != "tls-probe" {
		t.Errorf("RequestedPlugins() = %v", names)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "flowscope.ini", "log_level=debug")
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load() accepted a missing explicit path")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "flowscope.toml", `
log_level = "debug"
plugin_path = "/from/file"
`)

	t.Setenv(EnvPluginPath, "/from/env")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvBare, "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PluginPath != "/from/env" {
		t.Errorf("PluginPath = %q, env override lost", cfg.PluginPath)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, env override lost", cfg.LogLevel)
	}
	if !cfg.Bare {
		t.Error("Bare env override lost")
	}
}

func TestEnvBareIgnoresGarbage(t *testing.T) {
	t.Setenv(EnvBare, "sort-of")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bare {
		t.Error("unparseable boolean flipped Bare")
	}
}
