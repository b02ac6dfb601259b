package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeOutput()
	c.normalizeBatch()
	c.normalizeValidation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerDir) == "" {
		c.Paths.LedgerDir = defaultLedgerDir
	}
	if c.Paths.LedgerDir, err = expandPath(c.Paths.LedgerDir); err != nil {
		return fmt.Errorf("paths.ledger_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.SampleInterval <= 0 {
		c.Extraction.SampleInterval = defaultSampleInterval
	}
	c.Extraction.SchemaStrategy = strings.ToLower(strings.TrimSpace(c.Extraction.SchemaStrategy))
	if c.Extraction.SchemaStrategy == "" {
		c.Extraction.SchemaStrategy = defaultSchemaStrategy
	}
	if c.Extraction.MaxLoops < 0 {
		c.Extraction.MaxLoops = 0
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	if c.Output.RecordChunkSize <= 0 {
		c.Output.RecordChunkSize = defaultRecordChunkSize
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultWorkers
	}
}

func (c *Config) normalizeValidation() {
	if c.Validation.PervasiveWarningRatio <= 0 {
		c.Validation.PervasiveWarningRatio = defaultPervasiveWarningRatio
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
