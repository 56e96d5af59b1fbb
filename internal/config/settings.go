package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "tzchain.yaml"

// EnvPrefix prefixes environment overrides, e.g. TZCHAIN_CHAIN_BAKING_PRIVATE_KEY.
const EnvPrefix = "TZCHAIN"

// File is the tool configuration: the chain parameters plus everything
// needed to reach the collaborators.
type File struct {
	Chain     Params            `mapstructure:"chain"`
	Cluster   ClusterSettings   `mapstructure:"cluster"`
	Registry  RegistrySettings  `mapstructure:"registry"`
	Storage   StorageSettings   `mapstructure:"storage"`
	DNS       DNSSettings       `mapstructure:"dns"`
	Network   NetworkSettings   `mapstructure:"network"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`

	// Concurrency bounds per-item fan-out (asset staging, image builds).
	Concurrency int `mapstructure:"concurrency"`
}

// ClusterSettings locate the cluster and the chart.
type ClusterSettings struct {
	Kubeconfig string `mapstructure:"kubeconfig"`
	ChartPath  string `mapstructure:"chart_path"`

	// ChartSourceRoot is the directory holding one build context per
	// catalog entry.
	ChartSourceRoot string `mapstructure:"chart_source_root"`

	HelmTimeout         time.Duration `mapstructure:"helm_timeout"`
	// HelmWait makes the release step wait for every chart resource to be
	// ready before the p2p service is applied.
	HelmWait            bool          `mapstructure:"helm_wait"`
	LoadBalancerTimeout time.Duration `mapstructure:"load_balancer_timeout"`

	// ServiceAnnotations are key=value pairs added to the p2p service.
	// Annotation keys contain dots, which viper would split into nested keys.
	ServiceAnnotations []string `mapstructure:"service_annotations"`
}

// Annotations parses ServiceAnnotations.
func (c ClusterSettings) Annotations() (map[string]string, error) {
	out := make(map[string]string, len(c.ServiceAnnotations))
	for _, pair := range c.ServiceAnnotations {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid service annotation %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// RegistrySettings describe where built images are pushed.
type RegistrySettings struct {
	Repository string `mapstructure:"repository"`
	Tag        string `mapstructure:"tag"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	DockerHost string `mapstructure:"docker_host"`
}

// StorageSettings describe the S3-compatible object storage.
type StorageSettings struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	// PathStyle addresses buckets as endpoint/bucket instead of
	// bucket.endpoint, as MinIO and similar stores expect.
	PathStyle bool   `mapstructure:"path_style"`
}

// DNSSettings describe the Cloudflare zone the p2p alias lives in.
type DNSSettings struct {
	APIToken string `mapstructure:"api_token"`
	Zone     string `mapstructure:"zone"`
}

// NetworkSettings hold public network endpoint settings.
type NetworkSettings struct {
	BaseURL string `mapstructure:"base_url"`
}

// TelemetrySettings control tracing and metrics.
type TelemetrySettings struct {
	Tracing     bool   `mapstructure:"tracing"`
	Pushgateway string `mapstructure:"pushgateway"`
}

// DefaultNetworkBaseURL is the network endpoint base when none is configured.
const DefaultNetworkBaseURL = "https://teztnets.com"

// Load reads the configuration file at path (optional) and applies
// environment overrides.
func Load(path string) (*File, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, &ParseError{Path: path, Err: err}
			}
			return nil, &IOError{Path: path, Err: err}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg File
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chain.name", "")
	v.SetDefault("chain.chain_name", "")
	v.SetDefault("chain.image", "")
	v.SetDefault("chain.dns_label", "")
	v.SetDefault("chain.description", "")
	v.SetDefault("chain.bootstrap_peers", []string{})
	v.SetDefault("chain.bootstrap_contracts", []string{})
	v.SetDefault("chain.bootstrap_commitments", "")
	v.SetDefault("chain.contracts_dir", "")
	v.SetDefault("chain.commitments_dir", "")
	v.SetDefault("chain.values_path", "values.yaml")
	v.SetDefault("chain.chart_values_path", "tezos-k8s/charts/tezos/values.yaml")
	v.SetDefault("chain.baking_private_key", "")
	v.SetDefault("chain.non_baking_private_key", "")

	v.SetDefault("cluster.kubeconfig", "kubeconfig")
	v.SetDefault("cluster.chart_path", "tezos-k8s/charts/tezos")
	v.SetDefault("cluster.chart_source_root", "tezos-k8s")
	v.SetDefault("cluster.helm_timeout", "10m")
	v.SetDefault("cluster.helm_wait", true)
	v.SetDefault("cluster.load_balancer_timeout", "15m")
	v.SetDefault("cluster.service_annotations", []string{})

	v.SetDefault("registry.repository", "")
	v.SetDefault("registry.tag", "latest")
	v.SetDefault("registry.username", "")
	v.SetDefault("registry.password", "")
	v.SetDefault("registry.docker_host", "")

	v.SetDefault("storage.endpoint", "https://fsn1.your-objectstorage.com")
	v.SetDefault("storage.region", "fsn1")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.path_style", false)

	v.SetDefault("dns.api_token", "")
	v.SetDefault("dns.zone", "")

	v.SetDefault("network.base_url", DefaultNetworkBaseURL)

	v.SetDefault("telemetry.tracing", false)
	v.SetDefault("telemetry.pushgateway", "")

	v.SetDefault("concurrency", 4)
}
