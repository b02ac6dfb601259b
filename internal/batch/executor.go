package batch

import (
	"context"
	"log/slog"

	"sc2dataset/internal/dataset"
	"sc2dataset/internal/extract"
	"sc2dataset/internal/joblog"
	"sc2dataset/internal/logging"
	"sc2dataset/internal/services"
)

// Executor runs one ledger-tracked extraction job end to end: decode,
// validate, persist, record. It is the RunFunc used by production batches.
type Executor struct {
	pipeline   *extract.Pipeline
	writing    dataset.Options
	validation extract.ValidationOptions
	store      *joblog.Store
	logger     *slog.Logger
}

// NewExecutor wires the extraction pipeline to the dataset writer and the
// job ledger. The store may be nil for one-off runs that skip bookkeeping.
func NewExecutor(pipeline *extract.Pipeline, writing dataset.Options, validation extract.ValidationOptions, store *joblog.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		pipeline:   pipeline,
		writing:    writing,
		validation: validation,
		store:      store,
		logger:     logger,
	}
}

// Run implements RunFunc.
func (e *Executor) Run(ctx context.Context, job Job) Result {
	ctx = services.WithJobID(ctx, job.JobID)
	ctx = services.WithSource(ctx, job.Source)
	log := logging.WithContext(ctx, e.logger)

	if e.store != nil {
		if err := e.store.MarkRunning(ctx, job.JobID); err != nil {
			log.Warn("ledger update failed", logging.Error(err))
		}
	}

	result := e.extract(ctx, job, log)
	if e.store == nil {
		return result
	}
	if result.Err != nil {
		if err := e.store.MarkFailed(ctx, job.JobID, result.Err.Error(), services.Retryable(result.Err)); err != nil {
			log.Warn("ledger update failed", logging.Error(err))
		}
		return result
	}
	if err := e.store.MarkCompleted(ctx, job.JobID, result.Rows, result.Columns, result.Duration, result.OutputPath); err != nil {
		log.Warn("ledger update failed", logging.Error(err))
	}
	return result
}

func (e *Executor) extract(ctx context.Context, job Job, log *slog.Logger) Result {
	result := Result{JobID: job.JobID, Source: job.Source}

	extracted, err := e.pipeline.Run(services.WithStage(ctx, "extract"), job.Source)
	if err != nil {
		result.Err = err
		return result
	}

	report := extract.Validate(extracted, e.validation)
	for _, warning := range report.Warnings {
		log.Warn("dataset validation warning", logging.String("finding", warning))
	}
	if err := report.Err(); err != nil {
		result.Err = err
		return result
	}

	output, err := dataset.Write(extracted, e.writing)
	if err != nil {
		result.Err = services.Wrap(services.ErrTransient, "write", "dataset", "persist dataset", err)
		return result
	}

	result.Rows = int64(output.Rows)
	result.Columns = int64(extracted.Registry.Len())
	result.OutputPath = output.DataPath
	return result
}
