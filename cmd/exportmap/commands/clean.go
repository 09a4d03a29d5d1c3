package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/exportmap/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stored run records and bundle outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, _ := cmd.Flags().GetBool("cache")
			dist, _ := cmd.Flags().GetBool("dist")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{
				Cache: cache,
				Dist:  dist,
			}

			switch {
			case all:
				opts.Cache = true
				opts.Dist = true
			case !cache && !dist:
				// Default behavior: clean run records
				opts.Cache = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().Bool("cache", false, "Remove stored run records")
	cmd.Flags().Bool("dist", false, "Remove leftover bundle outputs")
	cmd.Flags().BoolP("all", "a", false, "Remove run records and bundle outputs")

	return cmd
}
