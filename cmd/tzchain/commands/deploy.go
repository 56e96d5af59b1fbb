package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/tzchain/cmd/tzchain/handlers"
)

// Deploy returns the command that releases a chain to the cluster.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: tzchain.yaml)
//	--yes, -y:    Skip the confirmation prompt
//	--wait-dns:   Wait for the p2p DNS alias before exiting
//
// Secrets may be supplied through TZCHAIN_-prefixed environment variables,
// e.g. TZCHAIN_CHAIN_BAKING_PRIVATE_KEY.
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy or update a chain",
		Long: `Deploy or update a private Tezos chain.

The chain parameters are merged into the chart values, bootstrap contracts
and commitments are staged to object storage, the chart's tool images are
built and pushed, and the Helm release plus the p2p load balancer are
applied to the cluster.

Examples:
  # Deploy using tzchain.yaml in the current directory
  tzchain deploy

  # Deploy without prompting and without waiting for DNS
  tzchain deploy -c testnet.yaml --yes --wait-dns=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Version = version
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: tzchain.yaml)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.WaitDNS, "wait-dns", true, "Wait for the p2p DNS alias to be created")

	return cmd
}
