package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"sc2dataset/internal/logging"
)

// Job is one unit of batch work.
type Job struct {
	JobID  string
	Source string
}

// Result is one job's outcome, reported in submission order regardless of
// which worker finished first.
type Result struct {
	JobID  string
	Source string

	Rows       int64
	Columns    int64
	OutputPath string
	Duration   time.Duration

	Err error
}

// Success reports whether the job produced a dataset.
func (r Result) Success() bool { return r.Err == nil }

// RunFunc executes one job. Implementations own all per-job state; the
// coordinator guarantees nothing is shared between concurrent invocations.
type RunFunc func(ctx context.Context, job Job) Result

// Coordinator fans jobs out over a bounded worker pool. One job's failure
// never affects another; every submitted job gets exactly one result.
type Coordinator struct {
	workers int64
	run     RunFunc
	logger  *slog.Logger
}

// NewCoordinator returns a coordinator running at most workers jobs at once.
func NewCoordinator(workers int, run RunFunc, logger *slog.Logger) *Coordinator {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{workers: int64(workers), run: run, logger: logger}
}

// Run executes all jobs and returns their results in submission order.
// Cancellation stops admission; jobs already running finish and report.
func (c *Coordinator) Run(ctx context.Context, jobs []Job) []Result {
	sem := semaphore.NewWeighted(c.workers)
	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{JobID: job.JobID, Source: job.Source, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = c.runOne(ctx, job)
		}(i, job)
	}
	wg.Wait()
	return results
}

// runOne wraps the job with timing and panic isolation so a crashing job
// surfaces as a failed result instead of taking the batch down.
func (c *Coordinator) runOne(ctx context.Context, job Job) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("job panicked",
				logging.String(logging.FieldJobID, job.JobID),
				logging.String(logging.FieldSource, job.Source),
				logging.Any("panic", r))
			result = Result{
				JobID:    job.JobID,
				Source:   job.Source,
				Duration: time.Since(start),
				Err:      fmt.Errorf("job panicked: %v", r),
			}
		}
	}()

	result = c.run(ctx, job)
	if result.JobID == "" {
		result.JobID = job.JobID
	}
	if result.Source == "" {
		result.Source = job.Source
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	return result
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Rows      int64
	Duration  time.Duration
}

// Summarize folds results into totals.
func Summarize(results []Result) Summary {
	var summary Summary
	summary.Total = len(results)
	for _, result := range results {
		if result.Success() {
			summary.Succeeded++
			summary.Rows += result.Rows
		} else {
			summary.Failed++
		}
		summary.Duration += result.Duration
	}
	return summary
}
