// Package release hands the resolved chain values to the cluster.
//
// It creates the chain's namespace, installs or upgrades the Helm release
// with the values as payload, exposes the baking nodes' p2p port through a
// LoadBalancer service and, once the load balancer has an address, points a
// DNS alias at it. The DNS step runs in the background; the returned future
// reports its outcome.
package release
