// Package cloudflare manages DNS records through the Cloudflare v4 API.
//
// AliasRegistrar points a hostname at a load balancer: a CNAME for a
// hostname target, an A or AAAA record for an IP target. Existing records of
// the name are updated or replaced.
package cloudflare
