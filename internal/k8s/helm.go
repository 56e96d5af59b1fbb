package k8s

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/storage/driver"

	"github.com/imamik/tzchain/internal/provisioning"
)

// DefaultHelmTimeout bounds a release install or upgrade when no timeout is set.
const DefaultHelmTimeout = 10 * time.Minute

// ConfigFunc returns the Helm action configuration for a namespace.
type ConfigFunc func(namespace string) (*action.Configuration, error)

// HelmClient installs or upgrades releases of a local chart.
type HelmClient struct {
	configure ConfigFunc
	timeout   time.Duration
	wait      bool
}

// NewHelmClient creates a HelmClient for the cluster in the kubeconfig file.
func NewHelmClient(kubeconfigPath string, timeout time.Duration, log logr.Logger) (*HelmClient, error) {
	data, err := os.ReadFile(kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
	}
	return NewHelmClientFromBytes(data, timeout, log), nil
}

// NewHelmClientFromBytes creates a HelmClient from kubeconfig bytes.
func NewHelmClientFromBytes(kubeconfig []byte, timeout time.Duration, log logr.Logger) *HelmClient {
	debug := func(format string, v ...interface{}) {
		log.V(1).Info(fmt.Sprintf(format, v...))
	}
	return NewHelmClientWithConfig(func(namespace string) (*action.Configuration, error) {
		cfg := new(action.Configuration)
		getter := newRESTClientGetter(kubeconfig, namespace)
		if err := cfg.Init(getter, namespace, os.Getenv("HELM_DRIVER"), debug); err != nil {
			return nil, fmt.Errorf("failed to init helm: %w", err)
		}
		return cfg, nil
	}, timeout)
}

// NewHelmClientWithConfig creates a HelmClient over a custom configuration source.
func NewHelmClientWithConfig(configure ConfigFunc, timeout time.Duration) *HelmClient {
	if timeout <= 0 {
		timeout = DefaultHelmTimeout
	}
	return &HelmClient{configure: configure, timeout: timeout, wait: true}
}

// SetWait controls whether install and upgrade block until the release's
// resources are ready. Waiting is on by default.
func (h *HelmClient) SetWait(wait bool) {
	h.wait = wait
}

// InstallChart upgrades the release if it has history, else installs it.
func (h *HelmClient) InstallChart(ctx context.Context, req provisioning.ChartRequest) error {
	chart, err := loader.Load(req.ChartPath)
	if err != nil {
		return fmt.Errorf("failed to load chart %s: %w", req.ChartPath, err)
	}

	cfg, err := h.configure(req.Namespace)
	if err != nil {
		return err
	}

	exists, err := releaseExists(cfg, req.Release)
	if err != nil {
		return err
	}

	if exists {
		upgrade := action.NewUpgrade(cfg)
		upgrade.Namespace = req.Namespace
		upgrade.Wait = h.wait
		upgrade.Timeout = h.timeout
		if _, err := upgrade.RunWithContext(ctx, req.Release, chart, req.Values); err != nil {
			return fmt.Errorf("helm upgrade %s failed: %w", req.Release, err)
		}
		return nil
	}

	install := action.NewInstall(cfg)
	install.Namespace = req.Namespace
	install.ReleaseName = req.Release
	install.CreateNamespace = true
	install.Wait = h.wait
	install.Timeout = h.timeout
	if _, err := install.RunWithContext(ctx, chart, req.Values); err != nil {
		return fmt.Errorf("helm install %s failed: %w", req.Release, err)
	}
	return nil
}

func releaseExists(cfg *action.Configuration, name string) (bool, error) {
	history := action.NewHistory(cfg)
	history.Max = 1
	_, err := history.Run(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, driver.ErrReleaseNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to read release history of %s: %w", name, err)
	}
}
