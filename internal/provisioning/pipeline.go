package provisioning

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Pipeline is an ordered list of phases.
type Pipeline struct {
	Phases []Phase
}

// NewPipeline creates a pipeline running phases in the given order.
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{Phases: phases}
}

// Run executes the pipeline's phases.
func (p *Pipeline) Run(ctx *Context) error {
	return RunPhases(ctx, p.Phases)
}

// RunPhases executes all phases sequentially. The first failure aborts the
// remaining phases; nothing already done is undone.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting deployment with %d phases...", len(phases))

	for i, phase := range phases {
		if err := runPhase(ctx, phase, i, len(phases)); err != nil {
			return err
		}
	}

	ctx.Observer.Printf("Deployment completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func runPhase(ctx *Context, phase Phase, index, total int) error {
	name := fmt.Sprintf("%s (%d/%d)", phase.Name(), index+1, total)

	spanCtx, span := ctx.Tracer.Start(ctx.Context, "phase "+phase.Name())
	span.SetAttributes(
		attribute.String("chain.name", ctx.Params.Name),
		attribute.Int("phase.index", index+1),
	)
	defer span.End()

	phaseCtx := *ctx
	phaseCtx.Context = spanCtx

	phaseStart := time.Now()
	LogPhaseStart(ctx.Observer, name)

	err := phase.Provision(&phaseCtx)
	ctx.Metrics.ObservePhase(phase.Name(), time.Since(phaseStart), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		LogPhaseFailed(ctx.Observer, name, err)
		return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
	}

	LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	return nil
}
