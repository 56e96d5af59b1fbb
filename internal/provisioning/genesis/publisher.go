package genesis

import (
	"context"
	"fmt"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/async"
	"github.com/imamik/tzchain/internal/util/naming"
)

const phase = "genesis"

// Publisher stages genesis assets and rewrites the activation URLs.
type Publisher struct {
	store       provisioning.ObjectStore
	concurrency int
}

// NewPublisher creates a publisher uploading through store with at most
// concurrency uploads in flight.
func NewPublisher(store provisioning.ObjectStore, concurrency int) *Publisher {
	return &Publisher{
		store:       store,
		concurrency: concurrency,
	}
}

// Name implements the provisioning.Phase interface.
func (p *Publisher) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Publisher) Provision(ctx *provisioning.Context) error {
	values, err := p.Publish(ctx, ctx.State.Values)
	if err != nil {
		return err
	}
	ctx.State.Values = values
	return nil
}

// Publish stages the assets declared in ctx.Params and returns values with
// the activation URLs filled in. When nothing needs staging it returns
// values unchanged without touching the store.
func (p *Publisher) Publish(ctx *provisioning.Context, values *config.ChainValues) (*config.ChainValues, error) {
	if !values.HasActivation() {
		provisioning.LogPhaseSkipped(ctx.Observer, phase, "no activation section, nothing to publish")
		return values, nil
	}
	if !ctx.Params.HasBootstrapAssets() {
		provisioning.LogPhaseSkipped(ctx.Observer, phase, "no bootstrap contracts or commitments declared")
		return values, nil
	}

	bucket := naming.GenesisBucket(ctx.Params.Name)
	provisioning.LogResourceCreating(ctx.Observer, phase, "bucket", bucket)
	if err := ctx.Collaborator("storage.create_bucket", p.store.CreatePublicBucket(ctx, bucket)); err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "bucket", bucket, "")

	staged, err := async.Map(ctx, Assets(ctx.Params), p.concurrency, func(gctx context.Context, asset Asset) (Asset, error) {
		url, err := p.store.StageObject(gctx, provisioning.Object{
			Bucket:      bucket,
			Key:         asset.Name,
			Path:        asset.Path,
			ContentType: asset.ContentType(),
			PublicRead:  true,
		})
		if err := ctx.Collaborator("storage.stage_object", err); err != nil {
			return Asset{}, fmt.Errorf("failed to stage %s %s: %w", asset.Kind, asset.Name, err)
		}
		asset.URL = url
		provisioning.LogResourceCreated(ctx.Observer, phase, "object", asset.Name, url)
		return asset, nil
	})
	if err != nil {
		return nil, err
	}

	return apply(values, staged), nil
}

// apply returns a copy of values with the staged URLs written into the
// activation section. Contract URLs are appended after any already present.
func apply(values *config.ChainValues, staged []Asset) *config.ChainValues {
	out := values.Clone()
	for _, asset := range staged {
		switch asset.Kind {
		case KindContract:
			out.Activation.BootstrapContractURLs = append(out.Activation.BootstrapContractURLs, asset.URL)
		case KindCommitment:
			out.Activation.CommitmentsURL = asset.URL
		}
	}
	return out
}
