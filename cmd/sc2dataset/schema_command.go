package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool
	var strategyFlag string
	var outFlag string

	cmd := &cobra.Command{
		Use:   "schema <replay>",
		Short: "Discover and print the column schema a replay would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			pipeline, err := ctx.newPipeline(cfg, strategyFlag, 0, logger)
			if err != nil {
				return err
			}
			result, err := pipeline.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outFlag != "" {
				if err := result.Registry.WriteDocs(outFlag); err != nil {
					return err
				}
				fmt.Fprintf(out, "Schema docs written to %s\n", outFlag)
			}
			if jsonFlag {
				docs, err := result.Registry.Docs()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(docs))
				return nil
			}

			columns := result.Registry.Columns()
			rows := make([][]string, 0, len(columns))
			for _, col := range columns {
				rows = append(rows, []string{
					fmt.Sprintf("%d", col.Index),
					col.Name,
					col.Type.String(),
					col.Sentinel.String(),
					col.Description,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Column", "Type", "Missing", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
			fmt.Fprintf(out, "%d columns over %d sampled rows\n", len(columns), len(result.Rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the schema as JSON")
	cmd.Flags().StringVar(&outFlag, "out", "", "Also write the schema docs JSON to this path")
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Schema strategy: prescan or incremental (defaults to config)")
	return cmd
}
