// Package naming provides consistent naming functions for chain resources.
//
// Cluster objects are named after the deployment: the namespace and Helm
// release use the bare name, the p2p service is {name}-p2p-lb and the
// bootstrap bucket is {name}-bootstrap (lowercased, as bucket names must
// be). Build targets map to source directories by replacing underscores
// with hyphens.
package naming
