package chain

import (
	"context"
	"strings"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/async"
)

// Deployment is a completed deployment. Its accessors read the final chain
// values only.
type Deployment struct {
	params      config.Params
	defaults    *config.ChartDefaults
	values      *config.ChainValues
	serviceName string
	dns         *async.Future
}

func newDeployment(params config.Params, state *provisioning.State) *Deployment {
	return &Deployment{
		params:      params,
		defaults:    state.Defaults,
		values:      state.Values,
		serviceName: state.ServiceName,
		dns:         state.DNS,
	}
}

// Name returns the deployment name.
func (d *Deployment) Name() string {
	return d.params.Name
}

// ChainName returns the network's chain name, falling back to the chart
// default.
func (d *Deployment) ChainName() (string, error) {
	if d.values.Network.ChainName != "" {
		return d.values.Network.ChainName, nil
	}
	if d.defaults != nil && d.defaults.ChainName != "" {
		return d.defaults.ChainName, nil
	}
	return "", &config.MissingFieldError{Field: "node_config_network.chain_name"}
}

// Description returns the human description of the chain.
func (d *Deployment) Description() string {
	return d.params.Description
}

// NetworkURL returns where the network's parameters are published. Chains
// without an activation account are built into the node binary and are
// identified by their bare name. Empty arguments select the defaults.
func (d *Deployment) NetworkURL(baseURL, relativeURL string) string {
	if d.values.Network.ActivationAccountName == nil {
		return d.params.Name
	}
	if baseURL == "" {
		baseURL = config.DefaultNetworkBaseURL
	}
	if relativeURL == "" {
		relativeURL = d.params.Name
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(relativeURL, "/")
}

// DockerImage returns the tezos node image.
func (d *Deployment) DockerImage() (string, error) {
	if d.values.Images.Tezos == "" {
		return "", &config.MissingFieldError{Field: "images.tezos"}
	}
	return d.values.Images.Tezos, nil
}

// ConsensusCommand returns the protocol command(s) the bakers run. A
// protocols list yields its commands joined by ", ".
func (d *Deployment) ConsensusCommand() (string, error) {
	hasList := len(d.values.Protocols) > 0
	hasSingle := d.values.Protocol != nil

	switch {
	case hasList && hasSingle:
		return "", &config.ConflictingFieldsError{Fields: []string{"protocols", "protocol"}}
	case hasList:
		commands := make([]string, 0, len(d.values.Protocols))
		for _, p := range d.values.Protocols {
			commands = append(commands, p.Command)
		}
		return strings.Join(commands, ", "), nil
	case hasSingle:
		if d.values.Protocol.Command == "" {
			return "", &config.MissingFieldError{Field: "protocol.command"}
		}
		return d.values.Protocol.Command, nil
	default:
		return "", &config.MissingFieldError{Field: "protocols"}
	}
}

// ServiceName returns the p2p LoadBalancer service name.
func (d *Deployment) ServiceName() string {
	return d.serviceName
}

// Values returns a copy of the final chain values.
func (d *Deployment) Values() *config.ChainValues {
	return d.values.Clone()
}

// WaitForDNS blocks until the p2p alias exists or its creation failed. It
// returns nil at once when no alias was scheduled.
func (d *Deployment) WaitForDNS(ctx context.Context) error {
	if d.dns == nil {
		return nil
	}
	return d.dns.Wait(ctx)
}

// DNSPending reports whether the p2p alias is still being created.
func (d *Deployment) DNSPending() bool {
	if d.dns == nil {
		return false
	}
	select {
	case <-d.dns.Done():
		return false
	default:
		return true
	}
}
