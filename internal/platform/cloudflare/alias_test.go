package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/tzchain/internal/util/retry"
)

// fakeZone is an in-memory Cloudflare zone.
type fakeZone struct {
	mu      sync.Mutex
	records map[string]Record
	calls   []string
	nextID  int

	// failWrites answers this many POST/PUT requests with failStatus.
	failWrites int
	failStatus int
}

func newFakeZone(records ...Record) *fakeZone {
	z := &fakeZone{records: map[string]Record{}}
	for _, r := range records {
		z.records[r.ID] = r
	}
	return z
}

func (z *fakeZone) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.calls = append(z.calls, r.Method+" "+r.URL.Path)

	if (r.Method == http.MethodPost || r.Method == http.MethodPut) && z.failWrites > 0 {
		z.failWrites--
		w.WriteHeader(z.failStatus)
		_, _ = w.Write([]byte(`{"success":false,"errors":[{"code":10000,"message":"failed"}]}`))
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/client/v4")
	switch {
	case path == "/zones":
		json.NewEncoder(w).Encode(apiResponse{Success: true, Result: json.RawMessage(`[{"id":"zone-1"}]`)})
	case path == "/zones/zone-1/dns_records" && r.Method == http.MethodGet:
		var out []Record
		for _, rec := range z.records {
			if rec.Name == r.URL.Query().Get("name") {
				out = append(out, rec)
			}
		}
		json.NewEncoder(w).Encode(listResponse{Success: true, Result: out, ResultInfo: resultInfo{Page: 1, TotalPages: 1}})
	case path == "/zones/zone-1/dns_records" && r.Method == http.MethodPost:
		var rec Record
		_ = json.NewDecoder(r.Body).Decode(&rec)
		z.nextID++
		rec.ID = fmt.Sprintf("new-%d", z.nextID)
		z.records[rec.ID] = rec
		z.writeRecord(w, rec)
	case strings.HasPrefix(path, "/zones/zone-1/dns_records/"):
		id := strings.TrimPrefix(path, "/zones/zone-1/dns_records/")
		switch r.Method {
		case http.MethodPut:
			var rec Record
			_ = json.NewDecoder(r.Body).Decode(&rec)
			rec.ID = id
			z.records[id] = rec
			z.writeRecord(w, rec)
		case http.MethodDelete:
			delete(z.records, id)
			json.NewEncoder(w).Encode(apiResponse{Success: true, Result: json.RawMessage(`{}`)})
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(apiResponse{Success: false})
	}
}

func (z *fakeZone) writeRecord(w http.ResponseWriter, rec Record) {
	data, _ := json.Marshal(rec)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Result: data})
}

func (z *fakeZone) byName(name string) []Record {
	z.mu.Lock()
	defer z.mu.Unlock()
	var out []Record
	for _, rec := range z.records {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

func newRegistrar(t *testing.T, zone *fakeZone) *AliasRegistrar {
	t.Helper()
	srv := httptest.NewServer(zone)
	t.Cleanup(srv.Close)
	return NewAliasRegistrar(testClient(srv), "example.com.",
		retry.WithAttempts(3), retry.WithInitialDelay(time.Millisecond))
}

func TestCreateAlias_CNAMEForHostname(t *testing.T) {
	t.Parallel()
	zone := newFakeZone()

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "lb-123.fsn1.example.net")

	require.NoError(t, err)
	records := zone.byName("p2p.example.com")
	require.Len(t, records, 1)
	assert.Equal(t, "CNAME", records[0].Type)
	assert.Equal(t, "lb-123.fsn1.example.net", records[0].Content)
	assert.Equal(t, aliasComment, records[0].Comment)
}

func TestCreateAlias_ARecordForIP(t *testing.T) {
	t.Parallel()
	zone := newFakeZone()

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "203.0.113.9")

	require.NoError(t, err)
	records := zone.byName("p2p.example.com")
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Type)
}

func TestCreateAlias_UpdatesExisting(t *testing.T) {
	t.Parallel()
	zone := newFakeZone(Record{ID: "old", Type: "A", Name: "p2p.example.com", Content: "203.0.113.1"})

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "203.0.113.9")

	require.NoError(t, err)
	records := zone.byName("p2p.example.com")
	require.Len(t, records, 1)
	assert.Equal(t, "old", records[0].ID)
	assert.Equal(t, "203.0.113.9", records[0].Content)
}

func TestCreateAlias_ReplacesOtherType(t *testing.T) {
	t.Parallel()
	zone := newFakeZone(
		Record{ID: "a", Type: "A", Name: "p2p.example.com", Content: "203.0.113.1"},
		Record{ID: "txt", Type: "TXT", Name: "p2p.example.com", Content: "keep me"},
	)

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "lb.example.net")

	require.NoError(t, err)
	types := map[string]string{}
	for _, rec := range zone.byName("p2p.example.com") {
		types[rec.Type] = rec.Content
	}
	assert.Equal(t, map[string]string{"CNAME": "lb.example.net", "TXT": "keep me"}, types)
}

func TestCreateAlias_UnchangedIsNoop(t *testing.T) {
	t.Parallel()
	zone := newFakeZone(Record{ID: "c", Type: "CNAME", Name: "p2p.example.com", Content: "lb.example.net"})

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "lb.example.net")

	require.NoError(t, err)
	for _, call := range zone.calls {
		assert.NotContains(t, call, "PUT")
		assert.NotContains(t, call, "POST")
	}
}

func TestCreateAlias_CachesZoneID(t *testing.T) {
	t.Parallel()
	zone := newFakeZone()
	registrar := newRegistrar(t, zone)

	require.NoError(t, registrar.CreateAlias(context.Background(), "a.example.com", "203.0.113.1"))
	require.NoError(t, registrar.CreateAlias(context.Background(), "b.example.com", "203.0.113.2"))

	lookups := 0
	for _, call := range zone.calls {
		if call == "GET /client/v4/zones" {
			lookups++
		}
	}
	assert.Equal(t, 1, lookups)
}

func TestCreateAlias_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	zone := newFakeZone()
	zone.failWrites = 2
	zone.failStatus = http.StatusServiceUnavailable

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "203.0.113.9")

	require.NoError(t, err)
	require.Len(t, zone.byName("p2p.example.com"), 1)
}

func TestCreateAlias_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	zone := newFakeZone()
	zone.failWrites = 1
	zone.failStatus = http.StatusBadRequest

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "203.0.113.9")

	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Empty(t, zone.byName("p2p.example.com"))
}

func TestCreateAlias_GivesUpOnPersistentFailure(t *testing.T) {
	t.Parallel()
	zone := newFakeZone()
	zone.failWrites = 10
	zone.failStatus = http.StatusTooManyRequests

	err := newRegistrar(t, zone).CreateAlias(context.Background(), "p2p.example.com", "203.0.113.9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, Retryable(&StatusError{StatusCode: 429}))
	assert.True(t, Retryable(&StatusError{StatusCode: 502}))
	assert.False(t, Retryable(&StatusError{StatusCode: 403}))
	assert.True(t, Retryable(fmt.Errorf("list: %w", &url.Error{Op: "Get", URL: "x", Err: errors.New("reset")})))
	assert.False(t, Retryable(errors.New("no zone found")))
}

func TestRecordType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "A", recordType("192.0.2.1"))
	assert.Equal(t, "AAAA", recordType("2001:db8::1"))
	assert.Equal(t, "CNAME", recordType("lb.example.net"))
}
