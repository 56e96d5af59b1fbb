package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tzchain/cmd/tzchain/handlers"
)

// Render returns the command that prints the merged chart values.
func Render() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the merged chart values",
		Long: `Merge the chain parameters into the chart values and print the
resulting YAML. Nothing is uploaded, built or installed, so genesis asset
URLs and tool images keep the values of the source documents.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.Context(), configPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: tzchain.yaml)")

	return cmd
}
