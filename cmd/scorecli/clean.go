package main

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"scorecli/internal/files"
)

func newCleanCmd(c *cli) *cobra.Command {
	var (
		strategy string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "clean [sources...]",
		Short: "Remove duplicates and handle missing cells, then save the result",
		Long: `Exact duplicate rows are always removed. The dropna strategy also drops
every row with a missing subject score; the mean strategy fills missing
scores with the column mean rounded to a whole number.`,
		Example: `  scorecli clean --strategy dropna scores.csv
  scorecli clean --strategy mean --out cleaned.csv s1.xlsx s2.xlsx`,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(cleaningStrategies(), strategy) {
				return fmt.Errorf("unknown strategy %q (want one of %v)", strategy, cleaningStrategies())
			}
			if out != "" {
				if err := files.NewSourceValidator(c.logger).ValidateOutputDirectory(filepath.Dir(out)); err != nil {
					return err
				}
			}

			analysis := c.cfg.Analysis
			analysis.Cleaning = strategy
			c.service = c.newService(analysis)

			ctx := cmd.Context()
			if err := c.load(ctx, args); err != nil {
				return err
			}

			path, err := c.service.ExportCleaned(ctx, out)
			if err != nil {
				return err
			}

			status := c.service.Status()
			if status.CleaningStats != nil {
				c.presenter.RenderCleaning(status.Cleaning, *status.CleaningStats, path)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "dropna", "cleaning strategy: none, dropna or mean")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output CSV path (default: data/cleaned_scores.csv)")
	return cmd
}
