package images

import (
	"context"
	"fmt"
	"slices"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/async"
	"github.com/imamik/tzchain/internal/util/naming"
)

const phase = "images"

// Excluded lists catalog targets that are never built.
var Excluded = []string{"zerotier"}

// Reference is a catalog target resolved to a pushed image.
type Reference struct {
	Target string
	Image  string
}

// Resolver builds catalog targets and records their image references.
type Resolver struct {
	builder     provisioning.ImageBuilder
	sourceRoot  string
	concurrency int
}

// NewResolver creates a resolver building targets found under sourceRoot,
// at most concurrency at a time.
func NewResolver(builder provisioning.ImageBuilder, sourceRoot string, concurrency int) *Resolver {
	return &Resolver{
		builder:     builder,
		sourceRoot:  sourceRoot,
		concurrency: concurrency,
	}
}

// Name implements the provisioning.Phase interface.
func (r *Resolver) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (r *Resolver) Provision(ctx *provisioning.Context) error {
	if ctx.State.Defaults == nil {
		return fmt.Errorf("chart defaults not loaded")
	}
	values, err := r.Apply(ctx, ctx.State.Defaults, ctx.State.Values)
	if err != nil {
		return err
	}
	ctx.State.Values = values
	return nil
}

// Targets returns the catalog without the excluded targets, in catalog order.
func Targets(defaults *config.ChartDefaults) []config.BuildTarget {
	return slices.DeleteFunc(defaults.Targets(), func(t config.BuildTarget) bool {
		return slices.Contains(Excluded, t.Name)
	})
}

// Resolve builds and pushes every target and returns the references in
// catalog order. Any failure fails the whole resolution.
func (r *Resolver) Resolve(ctx *provisioning.Context, defaults *config.ChartDefaults) ([]Reference, error) {
	return async.Map(ctx, Targets(defaults), r.concurrency, func(gctx context.Context, target config.BuildTarget) (Reference, error) {
		sourcePath := naming.BuildTargetPath(r.sourceRoot, target.Name)
		provisioning.LogResourceCreating(ctx.Observer, phase, "image", target.Name)

		image, err := r.builder.BuildAndPush(gctx, sourcePath)
		if err := ctx.Collaborator("image.build_and_push", err); err != nil {
			return Reference{}, fmt.Errorf("failed to build %s from %s: %w", target.Name, sourcePath, err)
		}

		provisioning.LogResourceCreated(ctx.Observer, phase, "image", target.Name, image)
		return Reference{Target: target.Name, Image: image}, nil
	})
}

// Apply resolves the catalog and returns a copy of values whose
// tezos_k8s_images holds exactly the resolved references.
func (r *Resolver) Apply(ctx *provisioning.Context, defaults *config.ChartDefaults, values *config.ChainValues) (*config.ChainValues, error) {
	refs, err := r.Resolve(ctx, defaults)
	if err != nil {
		return nil, err
	}

	out := values.Clone()
	if out == nil {
		out = &config.ChainValues{}
	}
	out.ToolImages = make(map[string]string, len(refs))
	for _, ref := range refs {
		out.ToolImages[ref.Target] = ref.Image
	}
	return out, nil
}
