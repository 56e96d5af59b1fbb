// Package retry retries operations against flaky remote APIs with
// exponential backoff.
//
// [Do] stops early on errors marked with [Permanent] and on context
// cancellation. It backs the Cloudflare alias registrar and image pushes.
package retry
