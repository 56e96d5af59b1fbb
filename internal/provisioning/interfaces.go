package provisioning

import "context"

// Phase defines the interface for a deployment phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the logic for this phase.
	Provision(ctx *Context) error
}

// Object describes a local file staged into object storage.
type Object struct {
	Bucket      string
	Key         string
	Path        string
	ContentType string
	PublicRead  bool
}

// ObjectStore stages files into durable object storage.
// Implemented by internal/platform/s3.Client.
type ObjectStore interface {
	// CreatePublicBucket creates a bucket whose objects are publicly readable.
	CreatePublicBucket(ctx context.Context, bucket string) error

	// StageObject uploads a local file and returns its public URL.
	StageObject(ctx context.Context, obj Object) (string, error)
}

// ImageBuilder builds and pushes a container image.
// Implemented by internal/platform/docker.Builder.
type ImageBuilder interface {
	// BuildAndPush builds the image whose context is sourcePath, pushes it
	// and returns a digest-pinned reference.
	BuildAndPush(ctx context.Context, sourcePath string) (string, error)
}

// ChartRequest describes a Helm release of a local chart.
type ChartRequest struct {
	Namespace string
	Release   string
	ChartPath string
	Values    map[string]any
}

// ChartInstaller installs or upgrades a Helm release.
// Implemented by internal/k8s.HelmClient.
type ChartInstaller interface {
	InstallChart(ctx context.Context, req ChartRequest) error
}

// ServiceRequest describes a load-balanced service.
type ServiceRequest struct {
	Namespace   string
	Name        string
	Port        int32
	Protocol    string
	Selector    map[string]string
	Labels      map[string]string
	Annotations map[string]string
}

// LoadBalancerAddress is the externally assigned address of a service.
type LoadBalancerAddress struct {
	Hostname string
	IP       string
}

// Target returns the hostname if assigned, else the IP.
func (a LoadBalancerAddress) Target() string {
	if a.Hostname != "" {
		return a.Hostname
	}
	return a.IP
}

// ClusterClient manages the cluster objects of a deployment.
// Implemented by internal/k8s.Client.
type ClusterClient interface {
	// EnsureNamespace creates the namespace unless it exists.
	EnsureNamespace(ctx context.Context, name string) error

	// ApplyService creates or updates a LoadBalancer service.
	ApplyService(ctx context.Context, svc ServiceRequest) error

	// WaitForLoadBalancer blocks until the service has an external address.
	WaitForLoadBalancer(ctx context.Context, namespace, name string) (LoadBalancerAddress, error)
}

// DNSRegistrar creates DNS alias records.
// Implemented by internal/platform/cloudflare.AliasRegistrar.
type DNSRegistrar interface {
	CreateAlias(ctx context.Context, hostname, target string) error
}
