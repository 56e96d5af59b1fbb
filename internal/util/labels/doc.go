// Package labels provides consistent labels for the Kubernetes objects of a
// chain deployment.
//
// Keys follow the app.kubernetes.io recommendations plus a tzchain.io
// prefix for the chain name, built with a fluent builder.
package labels
