package main

import (
	"log/slog"
	"strings"
	"sync"

	"sc2dataset/internal/config"
	"sc2dataset/internal/dataset"
	"sc2dataset/internal/extract"
	"sc2dataset/internal/joblog"
	"sc2dataset/internal/logging"
	"sc2dataset/internal/replay"
	"sc2dataset/internal/schema"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore opens the job ledger for the duration of fn.
func (c *commandContext) withStore(fn func(*joblog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := joblog.Open(cfg.Paths.LedgerDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// extractOptions maps configuration onto pipeline options, letting flag
// overrides win when set.
func (c *commandContext) extractOptions(cfg *config.Config, strategyFlag string) (extract.Options, error) {
	strategy := schema.Strategy(cfg.Extraction.SchemaStrategy)
	if trimmed := strings.TrimSpace(strategyFlag); trimmed != "" {
		parsed, err := schema.ParseStrategy(trimmed)
		if err != nil {
			return extract.Options{}, err
		}
		strategy = parsed
	}
	return extract.Options{
		SampleInterval:  int64(cfg.Extraction.SampleInterval),
		Strategy:        strategy,
		IncludeMessages: cfg.Extraction.IncludeMessages,
		MaxLoops:        cfg.Extraction.MaxLoops,
	}, nil
}

func (c *commandContext) writeOptions(cfg *config.Config, formatFlag string) dataset.Options {
	format := cfg.Output.Format
	if trimmed := strings.TrimSpace(formatFlag); trimmed != "" {
		format = trimmed
	}
	return dataset.Options{
		Dir:             cfg.Paths.OutputDir,
		Format:          format,
		ChunkSize:       cfg.Output.RecordChunkSize,
		WriteSchemaDocs: cfg.Output.WriteSchemaDocs,
	}
}

func (c *commandContext) validationOptions(cfg *config.Config) extract.ValidationOptions {
	return extract.ValidationOptions{
		Enabled:               cfg.Validation.Enabled,
		PervasiveWarningRatio: cfg.Validation.PervasiveWarningRatio,
	}
}

func (c *commandContext) newPipeline(cfg *config.Config, strategyFlag string, sampleInterval int64, logger *slog.Logger) (*extract.Pipeline, error) {
	opts, err := c.extractOptions(cfg, strategyFlag)
	if err != nil {
		return nil, err
	}
	if sampleInterval > 0 {
		opts.SampleInterval = sampleInterval
	}
	pipelineLogger := logging.NewComponentLogger(logger, "extract")
	return extract.New(replay.JSONDecoder{}, replay.DefaultCatalog(), pipelineLogger, opts), nil
}
