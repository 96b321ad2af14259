package main

import (
	"github.com/spf13/cobra"

	"scorecli/internal/exporter"
)

func newExportCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [sources...]",
		Short: "Write the semester averages table to the reports directory",
		Long: `Write the semester by subject averages table with the columns
Semester followed by one column per subject. The csv format writes
semester_average.csv and the xlsx format writes semester_average.xlsx.`,
		Example: `  scorecli export scores.csv
  scorecli export --format xlsx s1.xlsx s2.xlsx`,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := c.load(ctx, args); err != nil {
				return err
			}

			path, err := c.service.Export(ctx, f)
			if err != nil {
				return err
			}
			c.presenter.RenderMessage("Semester averages written to %s", path)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatCSV), "output format: csv or xlsx")
	return cmd
}
