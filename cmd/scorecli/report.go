package main

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"
)

func newReportCmd(c *cli) *cobra.Command {
	var (
		asJSON bool
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "report [sources...]",
		Short: "Print every analysis table for the given score files",
		Long: `Load the sources, clean them with the configured strategy and print the
failed students, semester averages, top students, lowest subject, improved
students and the subject and semester overviews.`,
		Example: `  scorecli report scores.xlsx
  scorecli report --strict --threshold 60 s1.csv s2.csv
  scorecli report --json scores.csv > report.json`,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.load(ctx, args); err != nil {
				return err
			}

			report, err := c.service.Report(ctx)
			if err != nil {
				return err
			}

			if save {
				run, err := c.service.SaveRun(ctx)
				if err != nil {
					return err
				}
				c.logger.InfoContext(ctx, "Run saved", slog.String("run_id", run.ID))
				if !asJSON {
					defer c.presenter.RenderMessage("Saved run %s", run.ID)
				}
			}

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			c.presenter.RenderReport(report)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the semester averages as a new run")
	return cmd
}
