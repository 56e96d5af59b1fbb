package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/imamik/tzchain/internal/chain"
)

// renderChain merges the chain values (for testing injection).
var renderChain = chain.Render

// Render writes the merged chart values as YAML to out.
func Render(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	values, err := renderChain(ctx, cfg.Chain, chain.Options{})
	if err != nil {
		return err
	}

	data, err := values.ToYAML()
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}

	_, err = out.Write(data)
	return err
}
