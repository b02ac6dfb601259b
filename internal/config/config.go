package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	LedgerDir string `toml:"ledger_dir"`
}

// Extraction contains per-job extraction settings.
type Extraction struct {
	// SampleInterval is the number of game loops advanced between sampled
	// frames. 1 samples every loop; 22 samples roughly once per second.
	SampleInterval int `toml:"sample_interval"`
	// SchemaStrategy selects how output columns are discovered:
	// "prescan" (two passes over the replay) or "incremental" (single pass).
	SchemaStrategy string `toml:"schema_strategy"`
	// IncludeMessages adds a chat message column to the output table.
	IncludeMessages bool `toml:"include_messages"`
	// MaxLoops caps how many game loops are read from a replay. 0 means the
	// full recording.
	MaxLoops int64 `toml:"max_loops"`
}

// Output contains dataset writer configuration.
type Output struct {
	// Format selects the row writer: "ipc" (Arrow IPC file) or "json"
	// (newline-delimited JSON).
	Format string `toml:"format"`
	// WriteSchemaDocs emits a per-run data dictionary JSON next to the dataset.
	WriteSchemaDocs bool `toml:"write_schema_docs"`
	// RecordChunkSize is the number of rows accumulated per Arrow record batch.
	RecordChunkSize int `toml:"record_chunk_size"`
}

// Batch contains worker-pool configuration.
type Batch struct {
	Workers int `toml:"workers"`
}

// Validation contains post-extraction validation thresholds.
type Validation struct {
	Enabled bool `toml:"enabled"`
	// PervasiveWarningRatio is the fraction of sampled frames above which
	// downgraded warnings (non-monotonic progress, out-of-range resources)
	// are escalated to validation errors.
	PervasiveWarningRatio float64 `toml:"pervasive_warning_ratio"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sc2dataset.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and job-ledger directories
//   - Extraction: frame sampling and schema discovery strategy
//   - Output: dataset writer format and chunking
//   - Batch: worker pool sizing
//   - Validation: post-extraction invariant checks
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Output     Output     `toml:"output"`
	Batch      Batch      `toml:"batch"`
	Validation Validation `toml:"validation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sc2dataset/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sc2dataset.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories extraction runs write into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.LedgerDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration document to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ and returns an absolute form of user-supplied paths.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
