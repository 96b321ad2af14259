package main

import (
	"github.com/spf13/cobra"
)

func newSourcesCmd(c *cli) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the score files found in the data directory",
		Long: `List the workbooks and CSV files that report, export and clean read
when no sources are given and none are configured.`,
		Args: cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			found, err := c.service.Sources(cmd.Context(), pattern)
			if err != nil {
				return err
			}
			c.presenter.RenderSources(c.paths.DataDir, found)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", `only list files whose name matches a glob, e.g. "term*"`)
	return cmd
}
