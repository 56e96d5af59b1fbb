package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Account names written by Merge.
const (
	BakerAccount    = "baker"
	NonBakerAccount = "non_baker"
)

// ChainValues is the instance override document: the values payload handed
// to the chart. Known paths are typed; everything else is kept in the inline
// remainders so it reaches Helm untouched.
type ChainValues struct {
	Network        NetworkConfig      `yaml:"node_config_network"`
	Accounts       map[string]Account `yaml:"accounts,omitempty"`
	Images         Images             `yaml:"images,omitempty"`
	BootstrapPeers []string           `yaml:"bootstrap_peers,omitempty"`

	// Activation is present only for chains that perform network activation.
	Activation *Activation `yaml:"activation,omitempty"`

	// ToolImages maps build targets to image references.
	ToolImages map[string]string `yaml:"tezos_k8s_images,omitempty"`

	Protocols []Protocol `yaml:"protocols,omitempty"`
	Protocol  *Protocol  `yaml:"protocol,omitempty"`

	Rest map[string]any `yaml:",inline"`
}

// NetworkConfig is the node_config_network section.
type NetworkConfig struct {
	ChainName string `yaml:"chain_name,omitempty"`

	// ActivationAccountName is set when the network config is not compiled
	// into the node binary.
	ActivationAccountName *string `yaml:"activation_account_name,omitempty"`

	Rest map[string]any `yaml:",inline"`
}

// Account is one entry of the accounts section.
type Account struct {
	Key  string         `yaml:"key,omitempty"`
	Rest map[string]any `yaml:",inline"`
}

// Images is the images section.
type Images struct {
	Tezos string         `yaml:"tezos,omitempty"`
	Rest  map[string]any `yaml:",inline"`
}

// Activation is the activation section.
type Activation struct {
	BootstrapContractURLs []string       `yaml:"bootstrap_contract_urls,omitempty"`
	CommitmentsURL        string         `yaml:"commitments_url,omitempty"`
	Rest                  map[string]any `yaml:",inline"`
}

// Protocol is one protocol entry.
type Protocol struct {
	Command string         `yaml:"command,omitempty"`
	Rest    map[string]any `yaml:",inline"`
}

// HasActivation reports whether the chain participates in network activation.
func (v *ChainValues) HasActivation() bool {
	return v.Activation != nil
}

// Clone returns a deep copy of the values.
func (v *ChainValues) Clone() *ChainValues {
	if v == nil {
		return nil
	}
	out := &ChainValues{
		Network: NetworkConfig{
			ChainName: v.Network.ChainName,
			Rest:      cloneMap(v.Network.Rest),
		},
		Images: Images{
			Tezos: v.Images.Tezos,
			Rest:  cloneMap(v.Images.Rest),
		},
		BootstrapPeers: cloneStrings(v.BootstrapPeers),
		Rest:           cloneMap(v.Rest),
	}
	if v.Network.ActivationAccountName != nil {
		name := *v.Network.ActivationAccountName
		out.Network.ActivationAccountName = &name
	}
	if v.Accounts != nil {
		out.Accounts = make(map[string]Account, len(v.Accounts))
		for name, acct := range v.Accounts {
			out.Accounts[name] = Account{Key: acct.Key, Rest: cloneMap(acct.Rest)}
		}
	}
	if v.Activation != nil {
		out.Activation = &Activation{
			BootstrapContractURLs: cloneStrings(v.Activation.BootstrapContractURLs),
			CommitmentsURL:        v.Activation.CommitmentsURL,
			Rest:                  cloneMap(v.Activation.Rest),
		}
	}
	if v.ToolImages != nil {
		out.ToolImages = make(map[string]string, len(v.ToolImages))
		for k, ref := range v.ToolImages {
			out.ToolImages[k] = ref
		}
	}
	if v.Protocols != nil {
		out.Protocols = make([]Protocol, len(v.Protocols))
		for i, p := range v.Protocols {
			out.Protocols[i] = Protocol{Command: p.Command, Rest: cloneMap(p.Rest)}
		}
	}
	if v.Protocol != nil {
		out.Protocol = &Protocol{Command: v.Protocol.Command, Rest: cloneMap(v.Protocol.Rest)}
	}
	return out
}

// ToYAML encodes the values as YAML.
func (v *ChainValues) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMap converts the values into the generic map Helm consumes. Scalars are
// normalized the same way Helm normalizes values files.
func (v *ChainValues) ToMap() (map[string]any, error) {
	data, err := v.ToYAML()
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	if err := sigsyaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to convert values: %w", err)
	}
	return out, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneAny(item)
		}
		return out
	default:
		return v
	}
}
