package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration: defaults, then the file at
// path if given, then environment overrides. A missing file at an
// explicitly given path is an error; an empty path skips the file
// layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault is Load with the standard config file locations:
// ./flowscope.toml, then $HOME/.flowscope/config.toml. Missing files
// are skipped.
func LoadDefault() (*Config, error) {
	cfg := Default()

	for _, path := range defaultConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		break
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaultConfigPaths() []string {
	paths := []string{"flowscope.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".flowscope", "config.toml"))
	}
	return paths
}

// loadFile parses one config file into cfg, choosing the codec by
// extension.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}
