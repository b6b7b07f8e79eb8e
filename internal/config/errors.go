package config

import "errors"

// Configuration errors.
var (
	// ErrUnsupportedFormat is returned for config files whose
	// extension is not .toml, .yaml, or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrWatcherClosed is returned when using a closed watcher.
	ErrWatcherClosed = errors.New("config watcher closed")
)
