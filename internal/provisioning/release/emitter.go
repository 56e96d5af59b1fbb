package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/async"
	"github.com/imamik/tzchain/internal/util/labels"
	"github.com/imamik/tzchain/internal/util/naming"
)

const phase = "release"

// P2P service constants.
const (
	P2PPort     int32 = 9732
	P2PProtocol       = "TCP"
)

// BakingNodeSelector selects the pods behind the p2p service.
var BakingNodeSelector = map[string]string{"node_class": "tezos-baking-node"}

// Options configure an Emitter.
type Options struct {
	// ChartPath is the local chart directory.
	ChartPath string

	// Zone is the DNS zone of the p2p alias. No alias is created when empty.
	Zone string

	// ServiceAnnotations are set on the p2p service.
	ServiceAnnotations map[string]string
}

// Emitter deploys resolved values to the cluster.
type Emitter struct {
	cluster provisioning.ClusterClient
	charts  provisioning.ChartInstaller
	dns     provisioning.DNSRegistrar
	opts    Options
}

// NewEmitter creates an emitter. dns may be nil, in which case no alias is
// created.
func NewEmitter(cluster provisioning.ClusterClient, charts provisioning.ChartInstaller, dns provisioning.DNSRegistrar, opts Options) *Emitter {
	return &Emitter{
		cluster: cluster,
		charts:  charts,
		dns:     dns,
		opts:    opts,
	}
}

// Name implements the provisioning.Phase interface.
func (e *Emitter) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (e *Emitter) Provision(ctx *provisioning.Context) error {
	dns, err := e.Emit(ctx, ctx.State.Values)
	if err != nil {
		return err
	}
	ctx.State.ServiceName = naming.P2PService(ctx.Params.Name)
	ctx.State.DNS = dns
	return nil
}

// Emit deploys values and schedules the DNS alias. It returns as soon as the
// p2p service has been applied; the returned future (nil when no alias is
// configured) completes when the alias exists or its creation failed.
func (e *Emitter) Emit(ctx *provisioning.Context, values *config.ChainValues) (*async.Future, error) {
	if values == nil {
		return nil, errors.New("values not resolved")
	}
	name := ctx.Params.Name
	namespace := naming.Namespace(name)

	provisioning.LogResourceCreating(ctx.Observer, phase, "namespace", namespace)
	if err := ctx.Collaborator("cluster.ensure_namespace", e.cluster.EnsureNamespace(ctx, namespace)); err != nil {
		return nil, fmt.Errorf("failed to create namespace %s: %w", namespace, err)
	}

	payload, err := values.ToMap()
	if err != nil {
		return nil, fmt.Errorf("failed to convert values: %w", err)
	}

	release := naming.Release(name)
	provisioning.LogResourceCreating(ctx.Observer, phase, "helm release", release)
	err = e.charts.InstallChart(ctx, provisioning.ChartRequest{
		Namespace: namespace,
		Release:   release,
		ChartPath: e.opts.ChartPath,
		Values:    payload,
	})
	if err := ctx.Collaborator("helm.install_chart", err); err != nil {
		return nil, fmt.Errorf("failed to install chart %s: %w", e.opts.ChartPath, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "helm release", release, e.opts.ChartPath)

	service := naming.P2PService(name)
	err = e.cluster.ApplyService(ctx, provisioning.ServiceRequest{
		Namespace:   namespace,
		Name:        service,
		Port:        P2PPort,
		Protocol:    P2PProtocol,
		Selector:    BakingNodeSelector,
		Labels:      labels.NewLabelBuilder(name).WithComponent(labels.ComponentP2P).WithRelease(release).Build(),
		Annotations: e.opts.ServiceAnnotations,
	})
	if err := ctx.Collaborator("cluster.apply_service", err); err != nil {
		return nil, fmt.Errorf("failed to apply service %s: %w", service, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "service", service, fmt.Sprintf("%d/%s", P2PPort, P2PProtocol))

	if e.dns == nil || e.opts.Zone == "" {
		provisioning.LogPhaseSkipped(ctx.Observer, phase, "no DNS zone configured, skipping p2p alias")
		return nil, nil
	}

	hostname := naming.DNSAlias(ctx.Params.AliasLabel(), e.opts.Zone)
	return async.Go(ctx.Context, "dns alias "+hostname, func(actx context.Context) error {
		return e.bindAlias(actx, ctx, namespace, service, hostname)
	}), nil
}

// bindAlias waits for the load balancer address and points hostname at it.
func (e *Emitter) bindAlias(actx context.Context, ctx *provisioning.Context, namespace, service, hostname string) error {
	addr, err := e.cluster.WaitForLoadBalancer(actx, namespace, service)
	if err := ctx.Collaborator("cluster.wait_for_load_balancer", err); err != nil {
		return fmt.Errorf("failed to get load balancer address of %s: %w", service, err)
	}
	target := addr.Target()
	if target == "" {
		return fmt.Errorf("load balancer of %s has no address", service)
	}

	provisioning.LogResourceCreating(ctx.Observer, phase, "dns alias", hostname)
	if err := ctx.Collaborator("dns.create_alias", e.dns.CreateAlias(actx, hostname, target)); err != nil {
		return fmt.Errorf("failed to create alias %s: %w", hostname, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "dns alias", hostname, target)
	return nil
}
