// Package docker builds container images with the Docker Engine API and
// pushes them to a registry, returning digest-pinned references.
package docker
