package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExtraction() error {
	switch c.Extraction.SchemaStrategy {
	case "prescan", "incremental":
	default:
		return fmt.Errorf("extraction.schema_strategy must be \"prescan\" or \"incremental\", got %q", c.Extraction.SchemaStrategy)
	}
	if c.Extraction.SampleInterval < 1 {
		return errors.New("extraction.sample_interval must be at least 1")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "ipc", "json":
	default:
		return fmt.Errorf("output.format must be \"ipc\" or \"json\", got %q", c.Output.Format)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateValidation() error {
	if c.Validation.PervasiveWarningRatio <= 0 || c.Validation.PervasiveWarningRatio > 1 {
		return errors.New("validation.pervasive_warning_ratio must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
