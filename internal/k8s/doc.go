// Package k8s talks to the Kubernetes cluster a chain is deployed into: the
// namespace, the p2p LoadBalancer service and the Helm release of the chart.
package k8s
