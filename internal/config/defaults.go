package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BuildTarget is one entry of the chart's image catalog.
type BuildTarget struct {
	Name  string
	Image string
}

// ChartDefaults is the chart-shipped values document. It is read-only once
// loaded.
type ChartDefaults struct {
	// ChainName is the chart's default node_config_network.chain_name.
	ChainName string

	// Catalog lists the tezos_k8s_images entries in document order.
	Catalog []BuildTarget
}

type chartDefaultsDoc struct {
	Network struct {
		ChainName string `yaml:"chain_name"`
	} `yaml:"node_config_network"`
	Images yaml.Node `yaml:"tezos_k8s_images"`
}

func parseChartDefaults(data []byte) (*ChartDefaults, error) {
	var doc chartDefaultsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	defaults := &ChartDefaults{ChainName: doc.Network.ChainName}

	// Decode the catalog from the node so document order survives.
	node := &doc.Images
	if node.Kind == 0 || node.Tag == "!!null" {
		return defaults, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: tezos_k8s_images must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var image string
		if err := value.Decode(&image); err != nil {
			return nil, fmt.Errorf("line %d: tezos_k8s_images.%s: %w", value.Line, key.Value, err)
		}
		defaults.Catalog = append(defaults.Catalog, BuildTarget{Name: key.Value, Image: image})
	}

	return defaults, nil
}

// Targets returns a copy of the catalog.
func (d *ChartDefaults) Targets() []BuildTarget {
	out := make([]BuildTarget, len(d.Catalog))
	copy(out, d.Catalog)
	return out
}
