package commands

import "github.com/spf13/cobra"

func (c *CLI) newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the condition preset of every harness scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Presets(cmd.Context())
		},
	}
}
