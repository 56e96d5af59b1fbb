// Package chain deploys one chain instance and exposes read-only views of
// its resolved configuration.
//
// Deploy runs the stages in a fixed order: load the override and chart
// defaults documents, merge the chain parameters, publish genesis assets,
// resolve tool images and release to the cluster. The Deployment it returns
// is the only way to reach the accessors, so they can never observe a
// partially resolved configuration.
package chain
