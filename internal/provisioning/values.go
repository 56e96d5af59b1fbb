package provisioning

import (
	"fmt"

	"github.com/imamik/tzchain/internal/config"
)

// LoadPhase reads the override and chart defaults documents.
type LoadPhase struct{}

// NewLoadPhase creates a new load phase.
func NewLoadPhase() *LoadPhase {
	return &LoadPhase{}
}

// Name implements the Phase interface.
func (p *LoadPhase) Name() string {
	return "load"
}

// Provision implements the Phase interface.
func (p *LoadPhase) Provision(ctx *Context) error {
	values, err := config.LoadValues(ctx.Params.ValuesPath)
	if err != nil {
		return fmt.Errorf("failed to load values: %w", err)
	}

	defaults, err := config.LoadChartDefaults(ctx.Params.ChartValuesPath)
	if err != nil {
		return fmt.Errorf("failed to load chart defaults: %w", err)
	}

	ctx.State.Values = values
	ctx.State.Defaults = defaults
	return nil
}

// MergePhase applies the chain parameters over the override document.
type MergePhase struct{}

// NewMergePhase creates a new merge phase.
func NewMergePhase() *MergePhase {
	return &MergePhase{}
}

// Name implements the Phase interface.
func (p *MergePhase) Name() string {
	return "merge"
}

// Provision implements the Phase interface.
func (p *MergePhase) Provision(ctx *Context) error {
	if ctx.State.Values == nil {
		return fmt.Errorf("values not loaded")
	}
	ctx.State.Values = config.Merge(ctx.State.Values, ctx.Params)
	return nil
}
