package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sc2dataset/internal/batch"
	"sc2dataset/internal/joblog"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var strategyFlag string
	var workersFlag int
	var clearFlag bool

	cmd := &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Re-run retryable failed jobs from the ledger",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *joblog.Store) error {
				out := cmd.OutOrStdout()
				if clearFlag {
					removed, err := store.Clear(cmd.Context(),
						joblog.StatusCompleted, joblog.StatusFailed)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d finished jobs from the ledger\n", removed)
					return nil
				}

				pending, err := store.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "No retryable failed jobs")
					return nil
				}

				jobs := make([]batch.Job, 0, len(pending))
				for _, entry := range pending {
					jobs = append(jobs, batch.Job{JobID: entry.JobID, Source: entry.Source})
				}

				workers := cfg.Batch.Workers
				if workersFlag > 0 {
					workers = workersFlag
				}

				pipeline, err := ctx.newPipeline(cfg, strategyFlag, 0, logger)
				if err != nil {
					return err
				}
				executor := batch.NewExecutor(pipeline,
					ctx.writeOptions(cfg, formatFlag),
					ctx.validationOptions(cfg),
					store, logger)
				coordinator := batch.NewCoordinator(workers, executor.Run, logger)

				results := coordinator.Run(cmd.Context(), jobs)
				printBatchResults(cmd, results)
				if summary := batch.Summarize(results); summary.Failed > 0 {
					return fmt.Errorf("%d of %d retried jobs failed", summary.Failed, summary.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: ipc or json (defaults to config)")
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Schema strategy: prescan or incremental (defaults to config)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Concurrent extraction jobs (defaults to config)")
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Remove finished jobs from the ledger instead of retrying")
	return cmd
}
