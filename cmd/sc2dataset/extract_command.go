package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sc2dataset/internal/dataset"
	"sc2dataset/internal/extract"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var strategyFlag string
	var outputDirFlag string
	var sampleIntervalFlag int64

	cmd := &cobra.Command{
		Use:   "extract <replay>...",
		Short: "Extract one or more replays without ledger bookkeeping",
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

			pipeline, err := ctx.newPipeline(cfg, strategyFlag, sampleIntervalFlag, logger)
			if err != nil {
				return err
			}
			writing := ctx.writeOptions(cfg, formatFlag)
			if outputDirFlag != "" {
				writing.Dir = outputDirFlag
			}
			validation := ctx.validationOptions(cfg)

			out := cmd.OutOrStdout()
			var failures int
			for _, source := range args {
				result, err := pipeline.Run(cmd.Context(), source)
				if err != nil {
					failures++
					fmt.Fprintf(out, "%s: %v\n", source, err)
					continue
				}
				report := extract.Validate(result, validation)
				for _, warning := range report.Warnings {
					fmt.Fprintf(out, "%s: warning: %s\n", source, warning)
				}
				if err := report.Err(); err != nil {
					failures++
					fmt.Fprintf(out, "%s: %v\n", source, err)
					continue
				}
				output, err := dataset.Write(result, writing)
				if err != nil {
					failures++
					fmt.Fprintf(out, "%s: %v\n", source, err)
					continue
				}
				fmt.Fprintf(out, "%s: %d rows x %d columns -> %s\n",
					source, output.Rows, result.Registry.Len(), output.DataPath)
				if output.DocsPath != "" {
					fmt.Fprintf(out, "%s: schema docs -> %s\n", source, output.DocsPath)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d replays failed", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: ipc or json (defaults to config)")
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Schema strategy: prescan or incremental (defaults to config)")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory for dataset files (defaults to config)")
	cmd.Flags().Int64Var(&sampleIntervalFlag, "sample-interval", 0, "Game loops between sampled frames (defaults to config)")
	return cmd
}
