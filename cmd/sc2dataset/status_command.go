package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sc2dataset/internal/joblog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger jobs and their outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *joblog.Store) error {
				if err := store.Health(cmd.Context()); err != nil {
					return err
				}
				var filter []joblog.Status
				if statusFlag != "" {
					status, ok := joblog.ParseStatus(statusFlag)
					if !ok {
						return fmt.Errorf("unknown status %q", statusFlag)
					}
					filter = append(filter, status)
				}

				jobs, err := store.List(cmd.Context(), filter...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(jobs) == 0 {
					fmt.Fprintln(out, "Ledger is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					detail := job.OutputPath
					if job.Status == joblog.StatusFailed {
						detail = job.ErrorMessage
					}
					rows = append(rows, []string{
						shortID(job.JobID),
						filepath.Base(job.Source),
						string(job.Status),
						fmt.Sprintf("%d", job.RowCount),
						formatDuration(job.DurationSeconds),
						formatTimestamp(job.UpdatedAt),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Job", "Replay", "Status", "Rows", "Duration", "Updated", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}))

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "pending %d | running %d | completed %d | failed %d\n",
					stats[joblog.StatusPending], stats[joblog.StatusRunning],
					stats[joblog.StatusCompleted], stats[joblog.StatusFailed])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show jobs with this status")
	return cmd
}

func shortID(jobID string) string {
	if len(jobID) > 8 {
		return jobID[:8]
	}
	return jobID
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return time.Duration(seconds * float64(time.Second)).Round(timeRounding).String()
}
