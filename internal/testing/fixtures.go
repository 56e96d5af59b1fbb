package testing

import (
	"os"
	"path/filepath"

	"github.com/imamik/tzchain/internal/config"
)

// DefaultOverride is the override document written by a ChainFixture.
const DefaultOverride = `node_config_network:
  chain_name: testnet
accounts:
  baker:
    key: edsk-baker
  non_baker:
    key: edsk-non-baker
images:
  tezos: tezos/tezos:v19.0
protocols:
  - command: PtParisB
nodes:
  tezos-baking-node:
    instances:
      - bake_using_accounts: [baker]
`

// ActivationSection is appended to the override document by WithActivation.
const ActivationSection = `activation:
  protocol_hash: PtParisBxoLz5gzMmn3d9WBQNoPSZakgnkMC2VNuQ3KXfUtUQeZ
  protocol_parameters:
    consensus_threshold: 0
`

// DefaultChartDefaults is the chart defaults document written by a ChainFixture.
const DefaultChartDefaults = `node_config_network:
  chain_name: default
tezos_k8s_images:
  utils: ghcr.io/oxheadalpha/tezos-k8s-utils:main
  zerotier: ghcr.io/oxheadalpha/tezos-k8s-zerotier:main
`

// ChainFixture lays out the files of one chain instance in a temporary
// directory.
type ChainFixture struct {
	t             TB
	dir           string
	params        config.Params
	override      string
	chartDefaults string
	activation    bool
}

// NewChainFixture creates a fixture named "testnet" with the default documents.
func NewChainFixture(t TB) *ChainFixture {
	t.Helper()
	dir := t.TempDir()
	return &ChainFixture{
		t:   t,
		dir: dir,
		params: config.Params{
			Name:            "testnet",
			ValuesPath:      filepath.Join(dir, "values.yaml"),
			ChartValuesPath: filepath.Join(dir, "chart-values.yaml"),
		},
		override:      DefaultOverride,
		chartDefaults: DefaultChartDefaults,
	}
}

// Dir returns the fixture's directory.
func (f *ChainFixture) Dir() string {
	return f.dir
}

// WithOverride replaces the override document.
func (f *ChainFixture) WithOverride(doc string) *ChainFixture {
	f.override = doc
	return f
}

// WithChartDefaults replaces the chart defaults document.
func (f *ChainFixture) WithChartDefaults(doc string) *ChainFixture {
	f.chartDefaults = doc
	return f
}

// WithActivation appends an activation section to the override document.
func (f *ChainFixture) WithActivation() *ChainFixture {
	f.activation = true
	return f
}

// WithContracts writes bootstrap contract files and declares them.
func (f *ChainFixture) WithContracts(names ...string) *ChainFixture {
	f.params.BootstrapContracts = append(f.params.BootstrapContracts, names...)
	for _, name := range names {
		f.write(filepath.Join(config.DefaultContractsDir, name), `{"code": []}`)
	}
	return f
}

// WithCommitments writes a bootstrap commitments file and declares it.
func (f *ChainFixture) WithCommitments(name string) *ChainFixture {
	f.params.BootstrapCommitments = name
	f.write(filepath.Join(config.DefaultCommitmentsDir, name), `[["btz1abc", "1000"]]`)
	return f
}

// WithParams applies fn to the fixture's parameters.
func (f *ChainFixture) WithParams(fn func(*config.Params)) *ChainFixture {
	fn(&f.params)
	return f
}

// Params writes both documents and returns the parameters pointing at them.
func (f *ChainFixture) Params() config.Params {
	f.t.Helper()
	override := f.override
	if f.activation {
		override += ActivationSection
	}
	f.write("values.yaml", override)
	f.write("chart-values.yaml", f.chartDefaults)
	return f.params
}

func (f *ChainFixture) write(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write %s: %v", path, err)
	}
}
