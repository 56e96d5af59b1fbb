package provisioning

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/util/async"
)

// TracerName is the instrumentation scope of deployment spans.
const TracerName = "github.com/imamik/tzchain/internal/provisioning"

// State holds the shared results of deployment phases.
type State struct {
	// Defaults is the chart defaults document (read-only).
	Defaults *config.ChartDefaults

	// Values is the override document. Every phase that changes it stores
	// the value it returns here; nothing else writes it.
	Values *config.ChainValues

	// Release results (populated by the release phase)
	ServiceName string
	DNS         *async.Future
}

// NewState creates an empty deployment state.
func NewState() *State {
	return &State{}
}

// Context wraps all dependencies and state needed for a deployment phase.
type Context struct {
	context.Context
	Params   config.Params
	State    *State
	Observer Observer
	Metrics  *Metrics
	Tracer   trace.Tracer
}

// NewContext creates a new deployment context.
func NewContext(ctx context.Context, params config.Params, observer Observer) *Context {
	if observer == nil {
		observer = NewLogObserver(ctx)
	}
	return &Context{
		Context:  ctx,
		Params:   params,
		State:    NewState(),
		Observer: observer.WithFields(map[string]string{"chain": params.Name}),
		Metrics:  NewMetrics(),
		Tracer:   otel.Tracer(TracerName),
	}
}

// Collaborator records the outcome of a delegated call and wraps a failure
// in a CollaboratorError.
func (c *Context) Collaborator(op string, err error) error {
	c.Metrics.ObserveCall(op, err)
	if err == nil {
		return nil
	}
	return &CollaboratorError{Op: op, Err: err}
}
