package testsupport

import (
	"path/filepath"
	"testing"

	"sc2dataset/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerDir = filepath.Join(base, "ledger")
	cfg.Output.Format = "json"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithStrategy overrides the schema discovery strategy on the test config.
func WithStrategy(strategy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Extraction.SchemaStrategy = strategy
	}
}

// WithWorkers overrides the batch worker count on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Batch.Workers = workers
	}
}
