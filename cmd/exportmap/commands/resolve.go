package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/exportmap/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <subpath>",
		Short: "Resolve one export subpath for a set of conditions",
		Long: `Resolve one export subpath for a set of conditions.

The subpath may be written as "./client", "client" or "pkg/client".
Conditions are matched in the order the package declares them, not the order given here.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("package")
			conditions, _ := cmd.Flags().GetStringArray("condition")
			explain, _ := cmd.Flags().GetBool("explain")
			asJSON, _ := cmd.Flags().GetBool("json")

			return c.app.Resolve(cmd.Context(), app.ResolveOptions{
				PackageDir: dir,
				Subpath:    args[0],
				Conditions: conditions,
				Explain:    explain,
				JSON:       asJSON,
			})
		},
	}
	cmd.Flags().StringP("package", "p", "", "Directory holding package.json (defaults to the harness package)")
	cmd.Flags().StringArrayP("condition", "C", nil, "Active condition, repeatable")
	cmd.Flags().Bool("explain", false, "Print every condition key visited")
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}
