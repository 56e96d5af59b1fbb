package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/imamik/tzchain/internal/util/naming"
	"github.com/imamik/tzchain/internal/util/retry"
)

// API is the subset of the Docker Engine client the builder uses.
type API interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
	Close() error
}

// Config configures a Builder.
type Config struct {
	// Host is the Docker daemon address. Empty uses DOCKER_HOST or the
	// default socket.
	Host string

	// Repository is the registry namespace images are pushed to, e.g.
	// "ghcr.io/acme".
	Repository string

	// Tag is applied to every built image.
	Tag string

	Username string
	Password string
}

// Builder builds and pushes images.
type Builder struct {
	api       API
	cfg       Config
	auth      string
	out       io.Writer
	pushRetry []retry.Option
}

// NewBuilder creates a builder talking to the Docker daemon.
func NewBuilder(cfg Config) (*Builder, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return NewBuilderWithAPI(cli, cfg)
}

// NewBuilderWithAPI creates a builder on an existing API client.
func NewBuilderWithAPI(api API, cfg Config) (*Builder, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("image repository is required")
	}
	if cfg.Tag == "" {
		cfg.Tag = "latest"
	}

	auth, err := registry.EncodeAuthConfig(registry.AuthConfig{
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry credentials: %w", err)
	}

	return &Builder{api: api, cfg: cfg, auth: auth, out: io.Discard, pushRetry: []retry.Option{retry.WithAttempts(3)}}, nil
}

// SetPushRetry replaces the retry policy of image pushes.
func (b *Builder) SetPushRetry(opts ...retry.Option) {
	b.pushRetry = opts
}

// SetOutput sets where build and push progress is written.
func (b *Builder) SetOutput(w io.Writer) {
	b.out = w
}

// Close releases the Docker client.
func (b *Builder) Close() error {
	return b.api.Close()
}

// BuildAndPush builds the Dockerfile in sourcePath, pushes the image and
// returns "<repository>@<digest>". If the registry reports no digest the
// tagged reference is returned.
func (b *Builder) BuildAndPush(ctx context.Context, sourcePath string) (string, error) {
	repo := naming.ImageRepository(b.cfg.Repository, sourcePath)
	ref := repo + ":" + b.cfg.Tag

	if err := b.build(ctx, sourcePath, ref); err != nil {
		return "", err
	}

	var digest string
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		digest, err = b.push(ctx, ref)
		return err
	}, b.pushRetry...)
	if err != nil {
		return "", err
	}
	if digest == "" {
		return ref, nil
	}
	return repo + "@" + digest, nil
}

func (b *Builder) build(ctx context.Context, sourcePath, ref string) error {
	if info, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("failed to read build context: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("build context %s is not a directory", sourcePath)
	}

	buildContext, err := archive.TarWithOptions(sourcePath, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to archive build context %s: %w", sourcePath, err)
	}
	defer buildContext.Close()

	resp, err := b.api.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:        []string{ref},
		Dockerfile:  "Dockerfile",
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, b.out, 0, false, nil); err != nil {
		return fmt.Errorf("failed to build %s: %w", ref, err)
	}
	return nil
}

type pushResult struct {
	Tag    string `json:"Tag"`
	Digest string `json:"Digest"`
	Size   int64  `json:"Size"`
}

func (b *Builder) push(ctx context.Context, ref string) (string, error) {
	rc, err := b.api.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: b.auth})
	if err != nil {
		return "", fmt.Errorf("failed to push %s: %w", ref, err)
	}
	defer rc.Close()

	var digest string
	err = jsonmessage.DisplayJSONMessagesStream(rc, b.out, 0, false, func(msg jsonmessage.JSONMessage) {
		if msg.Aux == nil {
			return
		}
		var result pushResult
		if json.Unmarshal(*msg.Aux, &result) == nil && result.Digest != "" {
			digest = result.Digest
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to push %s: %w", ref, err)
	}
	return digest, nil
}
