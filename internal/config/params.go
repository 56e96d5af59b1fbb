package config

import (
	"errors"
	"path/filepath"
)

// Default directories, relative to the override document, holding the
// bootstrap files named in Params.
const (
	DefaultContractsDir   = "bootstrap_contracts"
	DefaultCommitmentsDir = "bootstrap_commitments"
)

// Params are the per-instance chain parameters. They are supplied once and
// never mutated.
type Params struct {
	// Name identifies the deployment: namespace, release and bucket names
	// derive from it.
	Name string `mapstructure:"name"`

	ChainName   string   `mapstructure:"chain_name"`
	Image       string   `mapstructure:"image"`
	DNSLabel    string   `mapstructure:"dns_label"`
	Description string   `mapstructure:"description"`
	Peers       []string `mapstructure:"bootstrap_peers"`

	BootstrapContracts   []string `mapstructure:"bootstrap_contracts"`
	BootstrapCommitments string   `mapstructure:"bootstrap_commitments"`
	ContractsDir         string   `mapstructure:"contracts_dir"`
	CommitmentsDir       string   `mapstructure:"commitments_dir"`

	ValuesPath      string `mapstructure:"values_path"`
	ChartValuesPath string `mapstructure:"chart_values_path"`

	BakingPrivateKey    string `mapstructure:"baking_private_key"`
	NonBakingPrivateKey string `mapstructure:"non_baking_private_key"`
}

// Validate checks the parameters every deployment needs.
func (p Params) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("chain.name is required"))
	}
	if p.ValuesPath == "" {
		errs = append(errs, errors.New("chain.values_path is required"))
	}
	if p.ChartValuesPath == "" {
		errs = append(errs, errors.New("chain.chart_values_path is required"))
	}
	return errors.Join(errs...)
}

// ContractPath returns the local path of a bootstrap contract file.
func (p Params) ContractPath(filename string) string {
	return filepath.Join(p.bootstrapDir(p.ContractsDir, DefaultContractsDir), filename)
}

// CommitmentsPath returns the local path of the bootstrap commitments file.
func (p Params) CommitmentsPath() string {
	return filepath.Join(p.bootstrapDir(p.CommitmentsDir, DefaultCommitmentsDir), p.BootstrapCommitments)
}

// HasBootstrapAssets reports whether any bootstrap file is declared.
func (p Params) HasBootstrapAssets() bool {
	return len(p.BootstrapContracts) > 0 || p.BootstrapCommitments != ""
}

// AliasLabel returns the DNS label for the p2p alias, defaulting to the
// deployment name.
func (p Params) AliasLabel() string {
	if p.DNSLabel != "" {
		return p.DNSLabel
	}
	return p.Name
}

func (p Params) bootstrapDir(dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) || p.ValuesPath == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(p.ValuesPath), dir)
}
