package chain

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/provisioning/genesis"
	"github.com/imamik/tzchain/internal/provisioning/images"
	"github.com/imamik/tzchain/internal/provisioning/release"
)

// Collaborators are the external systems a deployment delegates to.
type Collaborators struct {
	Store   provisioning.ObjectStore
	Builder provisioning.ImageBuilder
	Charts  provisioning.ChartInstaller
	Cluster provisioning.ClusterClient
	// DNS may be nil, in which case no p2p alias is created.
	DNS provisioning.DNSRegistrar
}

// Options tune a deployment.
type Options struct {
	ChartPath          string
	ChartSourceRoot    string
	Zone               string
	ServiceAnnotations map[string]string
	Concurrency        int

	// Observer receives deployment events. Defaults to a LogObserver.
	Observer provisioning.Observer
	// Metrics, when set, records phase and collaborator metrics.
	Metrics *provisioning.Metrics
	// Tracer, when set, replaces the global tracer for phase spans.
	Tracer trace.Tracer
}

// Deploy resolves the chain configuration and releases it to the cluster.
// The first failing stage aborts the deployment; nothing already created is
// removed.
func Deploy(ctx context.Context, params config.Params, c Collaborators, opts Options) (*Deployment, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chain parameters: %w", err)
	}

	pctx := newContext(ctx, params, opts)
	pipeline := provisioning.NewPipeline(
		provisioning.NewLoadPhase(),
		provisioning.NewMergePhase(),
		genesis.NewPublisher(c.Store, opts.Concurrency),
		images.NewResolver(c.Builder, opts.ChartSourceRoot, opts.Concurrency),
		release.NewEmitter(c.Cluster, c.Charts, c.DNS, release.Options{
			ChartPath:          opts.ChartPath,
			Zone:               opts.Zone,
			ServiceAnnotations: opts.ServiceAnnotations,
		}),
	)
	if err := pipeline.Run(pctx); err != nil {
		return nil, err
	}

	return newDeployment(params, pctx.State), nil
}

// Render loads the documents and merges the chain parameters without
// touching any external system.
func Render(ctx context.Context, params config.Params, opts Options) (*config.ChainValues, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chain parameters: %w", err)
	}

	pctx := newContext(ctx, params, opts)
	if err := provisioning.RunPhases(pctx, []provisioning.Phase{
		provisioning.NewLoadPhase(),
		provisioning.NewMergePhase(),
	}); err != nil {
		return nil, err
	}
	return pctx.State.Values, nil
}

func newContext(ctx context.Context, params config.Params, opts Options) *provisioning.Context {
	pctx := provisioning.NewContext(ctx, params, opts.Observer)
	if opts.Metrics != nil {
		pctx.Metrics = opts.Metrics
	}
	if opts.Tracer != nil {
		pctx.Tracer = opts.Tracer
	}
	return pctx
}
