package k8s

import (
	"context"
	"fmt"
	"os"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/labels"
)

const (
	// DefaultLoadBalancerTimeout bounds WaitForLoadBalancer when no timeout is set.
	DefaultLoadBalancerTimeout = 15 * time.Minute

	defaultPollInterval = 5 * time.Second
)

// Client wraps the Kubernetes API operations of a deployment.
type Client struct {
	clientset    kubernetes.Interface
	lbTimeout    time.Duration
	pollInterval time.Duration
}

// NewClient creates a new Kubernetes client from a kubeconfig file.
func NewClient(kubeconfigPath string, lbTimeout time.Duration) (*Client, error) {
	data, err := os.ReadFile(kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
	}
	return NewClientFromBytes(data, lbTimeout)
}

// NewClientFromBytes creates a new Kubernetes client from kubeconfig bytes.
func NewClientFromBytes(kubeconfigData []byte, lbTimeout time.Duration) (*Client, error) {
	config, err := clientcmd.RESTConfigFromKubeConfig(kubeconfigData)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return NewClientWithInterface(clientset, lbTimeout), nil
}

// NewClientWithInterface wraps an existing clientset.
func NewClientWithInterface(clientset kubernetes.Interface, lbTimeout time.Duration) *Client {
	if lbTimeout <= 0 {
		lbTimeout = DefaultLoadBalancerTimeout
	}
	return &Client{
		clientset:    clientset,
		lbTimeout:    lbTimeout,
		pollInterval: defaultPollInterval,
	}
}

// SetPollInterval changes how often WaitForLoadBalancer checks the service.
func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

// EnsureNamespace creates the namespace unless it exists.
func (c *Client) EnsureNamespace(ctx context.Context, name string) error {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{
		Name:   name,
		Labels: labels.NewLabelBuilder(name).WithComponent(labels.ComponentNamespace).Build(),
	}}
	_, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

// ApplyService creates the LoadBalancer service, or updates the spec and
// annotations of an existing one.
func (c *Client) ApplyService(ctx context.Context, req provisioning.ServiceRequest) error {
	desired := buildService(req)
	services := c.clientset.CoreV1().Services(req.Namespace)

	_, err := services.Create(ctx, desired, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create service %s/%s: %w", req.Namespace, req.Name, err)
	}

	existing, err := services.Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get service %s/%s: %w", req.Namespace, req.Name, err)
	}

	if existing.Labels == nil {
		existing.Labels = map[string]string{}
	}
	for k, v := range req.Labels {
		existing.Labels[k] = v
	}
	if existing.Annotations == nil {
		existing.Annotations = map[string]string{}
	}
	for k, v := range req.Annotations {
		existing.Annotations[k] = v
	}
	existing.Spec.Type = desired.Spec.Type
	existing.Spec.Selector = desired.Spec.Selector
	existing.Spec.Ports = mergePorts(existing.Spec.Ports, desired.Spec.Ports)

	if _, err := services.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update service %s/%s: %w", req.Namespace, req.Name, err)
	}
	return nil
}

// WaitForLoadBalancer polls the service until the cloud provider assigns
// an ingress hostname or IP.
func (c *Client) WaitForLoadBalancer(ctx context.Context, namespace, name string) (provisioning.LoadBalancerAddress, error) {
	var addr provisioning.LoadBalancerAddress

	waitCtx, cancel := context.WithTimeout(ctx, c.lbTimeout)
	defer cancel()

	err := wait.PollUntilContextCancel(waitCtx, c.pollInterval, true, func(ctx context.Context) (bool, error) {
		svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		for _, ingress := range svc.Status.LoadBalancer.Ingress {
			if ingress.Hostname != "" || ingress.IP != "" {
				addr = provisioning.LoadBalancerAddress{Hostname: ingress.Hostname, IP: ingress.IP}
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return provisioning.LoadBalancerAddress{}, fmt.Errorf("load balancer for %s/%s not ready: %w", namespace, name, err)
	}
	return addr, nil
}

func buildService(req provisioning.ServiceRequest) *corev1.Service {
	protocol := corev1.Protocol(req.Protocol)
	if protocol == "" {
		protocol = corev1.ProtocolTCP
	}

	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:        req.Name,
			Namespace:   req.Namespace,
			Labels:      req.Labels,
			Annotations: req.Annotations,
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeLoadBalancer,
			Selector: req.Selector,
			Ports: []corev1.ServicePort{{
				Name:       "p2p",
				Port:       req.Port,
				TargetPort: intstr.FromInt32(req.Port),
				Protocol:   protocol,
			}},
		},
	}
}

// mergePorts keeps the node ports the cluster allocated for existing ports.
func mergePorts(existing, desired []corev1.ServicePort) []corev1.ServicePort {
	out := make([]corev1.ServicePort, 0, len(desired))
	for _, d := range desired {
		for _, e := range existing {
			if e.Name == d.Name && e.Port == d.Port && e.Protocol == d.Protocol {
				d.NodePort = e.NodePort
				break
			}
		}
		out = append(out, d)
	}
	return out
}
