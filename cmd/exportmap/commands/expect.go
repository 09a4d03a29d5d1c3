package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/exportmap/internal/app"
)

func (c *CLI) newExpectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expect [scenarios...]",
		Short: "Print the report each scenario should observe",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return c.app.Expect(cmd.Context(), args, app.ExpectOptions{JSON: asJSON})
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}
