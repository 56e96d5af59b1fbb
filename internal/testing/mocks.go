package testing

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/tzchain/internal/provisioning"
)

// MockObjectStore is a mock implementation of provisioning.ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

// CreatePublicBucket records the call.
func (m *MockObjectStore) CreatePublicBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// StageObject records the call and returns the configured URL.
func (m *MockObjectStore) StageObject(ctx context.Context, obj provisioning.Object) (string, error) {
	args := m.Called(ctx, obj)
	return args.String(0), args.Error(1)
}

// MockImageBuilder is a mock implementation of provisioning.ImageBuilder.
type MockImageBuilder struct {
	mock.Mock
}

// BuildAndPush records the call and returns the configured reference.
func (m *MockImageBuilder) BuildAndPush(ctx context.Context, sourcePath string) (string, error) {
	args := m.Called(ctx, sourcePath)
	return args.String(0), args.Error(1)
}

// MockChartInstaller is a mock implementation of provisioning.ChartInstaller.
type MockChartInstaller struct {
	mock.Mock
}

// InstallChart records the call.
func (m *MockChartInstaller) InstallChart(ctx context.Context, req provisioning.ChartRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockClusterClient is a mock implementation of provisioning.ClusterClient.
type MockClusterClient struct {
	mock.Mock
}

// EnsureNamespace records the call.
func (m *MockClusterClient) EnsureNamespace(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// ApplyService records the call.
func (m *MockClusterClient) ApplyService(ctx context.Context, svc provisioning.ServiceRequest) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

// WaitForLoadBalancer records the call and returns the configured address.
func (m *MockClusterClient) WaitForLoadBalancer(ctx context.Context, namespace, name string) (provisioning.LoadBalancerAddress, error) {
	args := m.Called(ctx, namespace, name)
	return args.Get(0).(provisioning.LoadBalancerAddress), args.Error(1)
}

// MockDNSRegistrar is a mock implementation of provisioning.DNSRegistrar.
type MockDNSRegistrar struct {
	mock.Mock
}

// CreateAlias records the call.
func (m *MockDNSRegistrar) CreateAlias(ctx context.Context, hostname, target string) error {
	args := m.Called(ctx, hostname, target)
	return args.Error(0)
}

// RecordingObserver is a provisioning.Observer that keeps every event.
// Observers derived through WithFields share the parent's record.
type RecordingObserver struct {
	mu       *sync.Mutex
	events   *[]provisioning.Event
	messages *[]string
	fields   map[string]string
}

// NewRecordingObserver creates an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		mu:       &sync.Mutex{},
		events:   &[]provisioning.Event{},
		messages: &[]string{},
		fields:   map[string]string{},
	}
}

// Printf records the format string.
func (o *RecordingObserver) Printf(format string, _ ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.messages = append(*o.messages, format)
}

// Event records the event.
func (o *RecordingObserver) Event(event provisioning.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.events = append(*o.events, event)
}

// WithFields returns an observer sharing this observer's record.
func (o *RecordingObserver) WithFields(fields map[string]string) provisioning.Observer {
	child := &RecordingObserver{
		mu:       o.mu,
		events:   o.events,
		messages: o.messages,
		fields:   make(map[string]string, len(o.fields)+len(fields)),
	}
	for k, v := range o.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// Events returns a copy of the recorded events.
func (o *RecordingObserver) Events() []provisioning.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]provisioning.Event(nil), *o.events...)
}

// EventsOfType returns the recorded events of type t.
func (o *RecordingObserver) EventsOfType(t provisioning.EventType) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range o.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
