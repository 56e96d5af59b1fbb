package testing

import (
	"context"
	"time"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
)

// TB is the subset of testing.TB the helpers need. Both *testing.T and
// GinkgoT() satisfy it.
type TB interface {
	Helper()
	Cleanup(func())
	TempDir() string
	Fatalf(format string, args ...any)
}

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// NewContext returns a provisioning context for params that records every
// event it observes.
func NewContext(t TB, params config.Params) (*provisioning.Context, *RecordingObserver) {
	t.Helper()
	observer := NewRecordingObserver()
	return provisioning.NewContext(TestContext(t), params, observer), observer
}
