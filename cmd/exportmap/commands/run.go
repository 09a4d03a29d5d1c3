package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/exportmap/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenarios...|all]",
		Short: "Bundle and run scenarios and compare what they observe",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			watch, _ := cmd.Flags().GetBool("watch")
			jobs, _ := cmd.Flags().GetInt("jobs")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			// If --ci is set, override output-mode to "linear"
			if ci {
				outputMode = "linear"
			}

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				NoCache:    noCache,
				DryRun:     dryRun,
				Watch:      watch,
				OutputMode: outputMode,
				Jobs:       jobs,
			})
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Ignore stored run records and run every scenario")
	cmd.Flags().Bool("dry-run", false, "Only compute the expected reports")
	cmd.Flags().BoolP("watch", "w", false, "Rerun when the package or harness changes")
	cmd.Flags().IntP("jobs", "j", 0, "Scenarios run at once (defaults to the harness parallelism)")
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, linear, or json")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	return cmd
}
