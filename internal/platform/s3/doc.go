// Package s3 provides a client for Hetzner Object Storage (S3-compatible).
//
// It creates publicly readable buckets and stages local files into them for
// download by chain nodes during genesis. Objects are addressed
// virtual-hosted style unless the client is configured for path-style access.
package s3
