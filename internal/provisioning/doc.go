// Package provisioning provides shared types, interfaces, and orchestration for chain deployment.
//
// # Subpackages
//
//   - genesis/: conditional staging of bootstrap contracts and commitments
//   - images/: build target catalog resolution into pushed image references
//   - release/: namespace, Helm release, p2p load balancer and DNS alias
//
// # Core Types
//
// Context carries the chain parameters, state, observer, metrics and tracer.
// Phase defines a deployment step with Name() and Provision() methods.
// State carries the chart defaults and the values document from phase to phase;
// each phase replaces State.Values with the value it returns.
package provisioning
