// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and CODEX_ env vars on top of those defaults.
// - Errors returned from Load wrap this package's sentinels.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath is the YAML file holding tier rows and the starting inventory.
	DataPath string `koanf:"data_path"`

	// StorePath is the SQLite file for collection progress. Empty keeps
	// progress in memory only.
	StorePath string `koanf:"store_path"`

	// QueueSize bounds the in-memory level-up queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of level-up workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the level-up event id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// FeedBuffer is the per-client backlog of the notification feed.
	FeedBuffer int `koanf:"feed_buffer"`

	// MaxItemLevel caps item levels in the inventory.
	MaxItemLevel int `koanf:"max_item_level"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// Node, when set, labels every metric series with node=<Node>.
	Node string `koanf:"node"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		DataPath:     "data/collections.yaml",
		StorePath:    "",
		QueueSize:    1_024,
		WorkerCount:  runtime.NumCPU(),
		DedupeSize:   10_000,
		FeedBuffer:   32,
		MaxItemLevel: 50,

		MetricsNamespace: "codex",
	}
}
