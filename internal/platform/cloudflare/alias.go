package cloudflare

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/imamik/tzchain/internal/util/retry"
)

const aliasComment = "managed by tzchain"

// AliasRegistrar creates alias records in one zone.
type AliasRegistrar struct {
	client *Client
	zone   string
	retry  []retry.Option

	mu     sync.Mutex
	zoneID string
}

// NewAliasRegistrar creates a registrar for zone. Rate-limited and failed
// calls are retried with opts, or retry.DefaultPolicy.
func NewAliasRegistrar(client *Client, zone string, opts ...retry.Option) *AliasRegistrar {
	return &AliasRegistrar{client: client, zone: strings.TrimSuffix(zone, "."), retry: opts}
}

// CreateAlias points hostname at target. A record of the same type is
// updated in place; records of the other alias types are removed first, as
// a CNAME cannot coexist with address records.
func (r *AliasRegistrar) CreateAlias(ctx context.Context, hostname, target string) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		err := r.createAlias(ctx, hostname, target)
		if err != nil && !Retryable(err) {
			return retry.Permanent(err)
		}
		return err
	}, r.retry...)
}

func (r *AliasRegistrar) createAlias(ctx context.Context, hostname, target string) error {
	zoneID, err := r.lookupZone(ctx)
	if err != nil {
		return err
	}

	want := Record{
		Type:    recordType(target),
		Name:    hostname,
		Content: target,
		TTL:     1, // automatic
		Comment: aliasComment,
	}

	existing, err := r.client.ListDNSRecords(ctx, zoneID, hostname)
	if err != nil {
		return fmt.Errorf("list records of %s: %w", hostname, err)
	}

	var update *Record
	for i := range existing {
		rec := existing[i]
		switch {
		case rec.Type == want.Type && update == nil:
			update = &existing[i]
		case rec.Type == "A" || rec.Type == "AAAA" || rec.Type == "CNAME":
			if err := r.client.DeleteDNSRecord(ctx, zoneID, rec.ID); err != nil {
				return fmt.Errorf("replace %s record of %s: %w", rec.Type, hostname, err)
			}
		}
	}

	if update != nil {
		if update.Content == want.Content {
			return nil
		}
		_, err = r.client.UpdateDNSRecord(ctx, zoneID, update.ID, want)
	} else {
		_, err = r.client.CreateDNSRecord(ctx, zoneID, want)
	}
	return err
}

func (r *AliasRegistrar) lookupZone(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.zoneID != "" {
		return r.zoneID, nil
	}
	id, err := r.client.GetZoneID(ctx, r.zone)
	if err != nil {
		return "", err
	}
	r.zoneID = id
	return id, nil
}

// recordType returns the record type aliasing target.
func recordType(target string) string {
	ip := net.ParseIP(target)
	switch {
	case ip == nil:
		return "CNAME"
	case ip.To4() != nil:
		return "A"
	default:
		return "AAAA"
	}
}
