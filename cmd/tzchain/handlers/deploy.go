package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/tzchain/internal/chain"
	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/k8s"
	"github.com/imamik/tzchain/internal/platform/cloudflare"
	"github.com/imamik/tzchain/internal/platform/docker"
	"github.com/imamik/tzchain/internal/platform/s3"
	"github.com/imamik/tzchain/internal/platform/telemetry"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/async"
	"github.com/imamik/tzchain/internal/util/prerequisites"
)

// DeployOptions are the flags of the deploy command.
type DeployOptions struct {
	ConfigPath string
	Yes        bool
	WaitDNS    bool
	Version    string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	newObjectStore = func(s config.StorageSettings) (provisioning.ObjectStore, error) {
		return s3.NewClient(s.Endpoint, s.Region, s.AccessKey, s.SecretKey, s.PathStyle)
	}

	newImageBuilder = func(r config.RegistrySettings) (provisioning.ImageBuilder, error) {
		return docker.NewBuilder(docker.Config{
			Host:       r.DockerHost,
			Repository: r.Repository,
			Tag:        r.Tag,
			Username:   r.Username,
			Password:   r.Password,
		})
	}

	newClusterClient = func(c config.ClusterSettings) (provisioning.ClusterClient, error) {
		return k8s.NewClient(c.Kubeconfig, c.LoadBalancerTimeout)
	}

	newChartInstaller = func(c config.ClusterSettings, logger logr.Logger) (provisioning.ChartInstaller, error) {
		h, err := k8s.NewHelmClient(c.Kubeconfig, c.HelmTimeout, logger)
		if err != nil {
			return nil, err
		}
		h.SetWait(c.HelmWait)
		return h, nil
	}

	// newDNSRegistrar returns nil when no Cloudflare zone is configured.
	newDNSRegistrar = func(d config.DNSSettings) provisioning.DNSRegistrar {
		if d.APIToken == "" || d.Zone == "" {
			return nil
		}
		return cloudflare.NewAliasRegistrar(cloudflare.NewClient(d.APIToken), d.Zone)
	}

	newTelemetry = telemetry.New

	deployChain = chain.Deploy

	// checkPrerequisites verifies local inputs before anything remote is touched.
	checkPrerequisites = func(cfg *config.File) error {
		results := prerequisites.CheckDeploy(cfg)
		if !results.HasErrors() {
			return nil
		}
		return results.Error()
	}

	// confirmDeploy asks before touching the cluster.
	confirmDeploy = func(ctx context.Context, name string) (bool, error) {
		ok := false
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Deploy chain %q?", name)).
					Description("Genesis assets are published, images pushed and the release installed.").
					Affirmative("Deploy").
					Negative("Cancel").
					Value(&ok),
			),
		).RunWithContext(ctx)
		return ok, err
	}

	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	stdout io.Writer = os.Stdout
)

// Deploy releases the configured chain to the cluster.
//
// The flow is:
//  1. Load the configuration, check local inputs and ask for confirmation
//     (unless --yes or no TTY)
//  2. Build the object store, image builder, cluster, Helm and DNS clients
//  3. Run the deployment pipeline
//  4. Print the summary and optionally wait for the p2p DNS alias
//  5. Push metrics when a Pushgateway is set and flush traces
func Deploy(ctx context.Context, opts DeployOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := log.FromContext(ctx).WithValues("chain", cfg.Chain.Name)

	annotations, err := cfg.Cluster.Annotations()
	if err != nil {
		return err
	}

	if err := checkPrerequisites(cfg); err != nil {
		return err
	}

	interactive := isInteractiveTTY()
	if !opts.Yes && interactive {
		ok, err := confirmDeploy(ctx, cfg.Chain.Name)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			fmt.Fprintln(stdout, "Deployment cancelled.")
			return nil
		}
	}

	tel, err := newTelemetry(ctx, cfg.Telemetry.Tracing, opts.Version)
	if err != nil {
		return err
	}
	metrics := provisioning.NewMetrics()
	defer exportTelemetry(ctx, logger, cfg, tel, metrics)

	collaborators, closeAll, err := buildCollaborators(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	zone := cfg.DNS.Zone
	if collaborators.DNS == nil {
		zone = ""
	}

	dep, deployErr := deployChain(ctx, cfg.Chain, collaborators, chain.Options{
		ChartPath:          cfg.Cluster.ChartPath,
		ChartSourceRoot:    cfg.Cluster.ChartSourceRoot,
		Zone:               zone,
		ServiceAnnotations: annotations,
		Concurrency:        cfg.Concurrency,
		Observer:           provisioning.NewLogObserverFor(logger),
		Metrics:            metrics,
		Tracer:             tel.Tracer,
	})

	if deployErr != nil {
		return fmt.Errorf("deployment failed: %w", deployErr)
	}

	printSummary(stdout, summarize(dep, cfg, zone), interactive)

	if opts.WaitDNS && zone != "" {
		if dep.DNSPending() {
			fmt.Fprintln(stdout, "Waiting for the p2p load balancer and DNS alias...")
		}
		if err := dep.WaitForDNS(ctx); err != nil {
			return fmt.Errorf("dns alias failed: %w", err)
		}
		fmt.Fprintln(stdout, "DNS alias created.")
	}

	return nil
}

// exportTelemetry pushes the metrics and flushes the traces of the whole
// run, including the DNS wait.
func exportTelemetry(ctx context.Context, logger logr.Logger, cfg *config.File, tel *telemetry.Telemetry, metrics *provisioning.Metrics) {
	err := async.RunParallel(context.WithoutCancel(ctx), []async.Task{
		{Name: "push metrics", Func: func(ctx context.Context) error {
			return metrics.Push(ctx, cfg.Telemetry.Pushgateway, cfg.Chain.Name)
		}},
		{Name: "flush traces", Func: tel.Shutdown},
	})
	if err != nil {
		logger.Error(err, "failed to export telemetry", "pushgateway", cfg.Telemetry.Pushgateway)
	}
}

func buildCollaborators(cfg *config.File, logger logr.Logger) (chain.Collaborators, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	store, err := newObjectStore(cfg.Storage)
	if err != nil {
		return chain.Collaborators{}, closeAll, fmt.Errorf("failed to create object store: %w", err)
	}

	builder, err := newImageBuilder(cfg.Registry)
	if err != nil {
		return chain.Collaborators{}, closeAll, fmt.Errorf("failed to create image builder: %w", err)
	}
	if c, ok := builder.(io.Closer); ok {
		closers = append(closers, c)
	}

	cluster, err := newClusterClient(cfg.Cluster)
	if err != nil {
		closeAll()
		return chain.Collaborators{}, func() {}, fmt.Errorf("failed to create cluster client: %w", err)
	}

	charts, err := newChartInstaller(cfg.Cluster, logger)
	if err != nil {
		closeAll()
		return chain.Collaborators{}, func() {}, fmt.Errorf("failed to create helm client: %w", err)
	}

	return chain.Collaborators{
		Store:   store,
		Builder: builder,
		Charts:  charts,
		Cluster: cluster,
		DNS:     newDNSRegistrar(cfg.DNS),
	}, closeAll, nil
}
