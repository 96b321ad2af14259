package main

import (
	"github.com/spf13/cobra"
)

func newRunsCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List stored analysis runs or show one run's averages",
		Example: `  scorecli runs
  scorecli runs --limit 5
  scorecli runs 3f1c9a2e-...
  scorecli runs delete 3f1c9a2e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				run, err := c.service.Run(ctx, args[0])
				if err != nil {
					return err
				}
				c.presenter.RenderMessage("Run %s from %s", run.ID, run.Source)
				c.presenter.RenderSemesterAverages(run.Subjects, run.Averages)
				return nil
			}

			runs, err := c.service.Runs(ctx, limit)
			if err != nil {
				return err
			}
			c.presenter.RenderRuns(runs)
			return nil
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	cmd.AddCommand(newRunsDeleteCmd(c))
	return cmd
}

func newRunsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored run",
		Args:    cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if err := c.service.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.presenter.RenderMessage("Deleted run %s", args[0])
			return nil
		}),
	}
}
