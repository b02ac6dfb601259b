package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"sc2dataset/internal/batch"
	"sc2dataset/internal/joblog"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var strategyFlag string
	var workersFlag int

	cmd := &cobra.Command{
		Use:   "batch <replay-or-dir>...",
		Short: "Extract a set of replays through the job ledger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			sources, err := collectSources(args)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no replay files found under %s", strings.Join(args, ", "))
			}

			workers := cfg.Batch.Workers
			if workersFlag > 0 {
				workers = workersFlag
			}

			return ctx.withStore(func(store *joblog.Store) error {
				jobs := make([]batch.Job, 0, len(sources))
				for _, source := range sources {
					entry, err := store.Add(cmd.Context(), source)
					if err != nil {
						return err
					}
					jobs = append(jobs, batch.Job{JobID: entry.JobID, Source: source})
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
					return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: ipc or json (defaults to config)")
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Schema strategy: prescan or incremental (defaults to config)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Concurrent extraction jobs (defaults to config)")
	return cmd
}

// collectSources expands directories into their replay manifests and keeps
// explicit file arguments as-is, deduplicated and sorted for a stable
// submission order.
func collectSources(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var sources []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			sources = append(sources, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
				add(filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func printBatchResults(cmd *cobra.Command, results []batch.Result) {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		status := "completed"
		detail := result.OutputPath
		if !result.Success() {
			status = "failed"
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(result.Source),
			status,
			fmt.Sprintf("%d", result.Rows),
			fmt.Sprintf("%d", result.Columns),
			result.Duration.Round(timeRounding).String(),
			detail,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Replay", "Status", "Rows", "Columns", "Duration", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}))

	summary := batch.Summarize(results)
	fmt.Fprintf(out, "%d jobs: %d completed, %d failed, %d rows\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.Rows)
}
