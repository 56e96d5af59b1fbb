package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadValues reads and parses the instance override document.
func LoadValues(path string) (*ChainValues, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	values, err := ParseValues(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return values, nil
}

// ParseValues parses an override document from bytes. Optional sections
// are present when their key is, even with a null value.
func ParseValues(data []byte) (*ChainValues, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var values ChainValues
	if len(doc.Content) == 0 {
		return &values, nil
	}
	root := doc.Content[0]
	if err := root.Decode(&values); err != nil {
		return nil, err
	}
	markNullKeys(root, &values)
	return &values, nil
}

// markNullKeys sets the optional fields whose keys decode to nil because
// their value is null.
func markNullKeys(root *yaml.Node, values *ChainValues) {
	if _, ok := mappingValue(root, "activation"); ok && values.Activation == nil {
		values.Activation = &Activation{}
	}
	if _, ok := mappingValue(root, "protocol"); ok && values.Protocol == nil {
		values.Protocol = &Protocol{}
	}
	if network, ok := mappingValue(root, "node_config_network"); ok {
		if _, ok := mappingValue(network, "activation_account_name"); ok && values.Network.ActivationAccountName == nil {
			name := ""
			values.Network.ActivationAccountName = &name
		}
	}
}

func mappingValue(node *yaml.Node, key string) (*yaml.Node, bool) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1], true
		}
	}
	return nil, false
}

// LoadChartDefaults reads and parses the chart defaults document.
func LoadChartDefaults(path string) (*ChartDefaults, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	defaults, err := parseChartDefaults(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return defaults, nil
}

func readDocument(path string) ([]byte, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return data, nil
}
