package testsupport

import (
	"path/filepath"
	"testing"

	"lorecast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StaticDir = filepath.Join(base, "static")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Redis.Addr = "127.0.0.1:0"
	cfg.Sync.Destination = "test@remote:/archive/"
	cfg.Workflow.DequeueBlock = 1
	cfg.Workflow.PromoteInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSyncDelay overrides the completion-to-sync dispatch delay.
func WithSyncDelay(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sync.DispatchDelay = seconds
	}
}

// WithMaxRetries overrides the processing-stage retry ceiling.
func WithMaxRetries(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.MaxRetries = n
	}
}
