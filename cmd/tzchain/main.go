// Package main is the entry point for the tzchain CLI.
//
// tzchain deploys a private Tezos chain to a Kubernetes cluster: it merges
// the chain parameters into the chart values, publishes genesis assets to
// object storage, builds the chart's tool images and installs the Helm
// release.
//
// For detailed usage information, run:
//
//	tzchain --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/tzchain/cmd/tzchain/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
