package config

const (
	defaultOutputDir             = "~/.local/share/sc2dataset/output"
	defaultLogDir                = "~/.local/share/sc2dataset/logs"
	defaultLedgerDir             = "~/.local/share/sc2dataset/ledger"
	defaultSampleInterval        = 22
	defaultSchemaStrategy        = "prescan"
	defaultOutputFormat          = "ipc"
	defaultRecordChunkSize       = 1024
	defaultWorkers               = 4
	defaultPervasiveWarningRatio = 0.01
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			LedgerDir: defaultLedgerDir,
		},
		Extraction: Extraction{
			SampleInterval:  defaultSampleInterval,
			SchemaStrategy:  defaultSchemaStrategy,
			IncludeMessages: true,
		},
		Output: Output{
			Format:          defaultOutputFormat,
			WriteSchemaDocs: true,
			RecordChunkSize: defaultRecordChunkSize,
		},
		Batch: Batch{
			Workers: defaultWorkers,
		},
		Validation: Validation{
			Enabled:               true,
			PervasiveWarningRatio: defaultPervasiveWarningRatio,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
