package k8s

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/labels"
)

func p2pRequest() provisioning.ServiceRequest {
	return provisioning.ServiceRequest{
		Namespace:   "testnet",
		Name:        "tezos-service-p2p",
		Port:        9732,
		Protocol:    "TCP",
		Selector:    map[string]string{"node_class": "tezos-baking-node"},
		Labels:      map[string]string{labels.KeyChain: "testnet"},
		Annotations: map[string]string{"load-balancer.hetzner.cloud/location": "fsn1"},
	}
}

func TestEnsureNamespace(t *testing.T) {
	cs := k8sfake.NewSimpleClientset()
	c := NewClientWithInterface(cs, time.Second)

	require.NoError(t, c.EnsureNamespace(context.Background(), "testnet"))
	require.NoError(t, c.EnsureNamespace(context.Background(), "testnet"))

	ns, err := cs.CoreV1().Namespaces().Get(context.Background(), "testnet", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "testnet", ns.Name)
	assert.Equal(t, labels.ManagedByTzchain, ns.Labels[labels.KeyManagedBy])
	assert.Equal(t, labels.ComponentNamespace, ns.Labels[labels.KeyComponent])
}

func TestEnsureNamespace_Error(t *testing.T) {
	cs := k8sfake.NewSimpleClientset()
	cs.PrependReactor("create", "namespaces", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	c := NewClientWithInterface(cs, time.Second)

	err := c.EnsureNamespace(context.Background(), "testnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create namespace testnet")
}

func TestApplyService_Create(t *testing.T) {
	cs := k8sfake.NewSimpleClientset()
	c := NewClientWithInterface(cs, time.Second)

	require.NoError(t, c.ApplyService(context.Background(), p2pRequest()))

	svc, err := cs.CoreV1().Services("testnet").Get(context.Background(), "tezos-service-p2p", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, corev1.ServiceTypeLoadBalancer, svc.Spec.Type)
	assert.Equal(t, map[string]string{"node_class": "tezos-baking-node"}, svc.Spec.Selector)
	assert.Equal(t, "fsn1", svc.Annotations["load-balancer.hetzner.cloud/location"])
	assert.Equal(t, "testnet", svc.Labels[labels.KeyChain])
	require.Len(t, svc.Spec.Ports, 1)
	assert.Equal(t, "p2p", svc.Spec.Ports[0].Name)
	assert.Equal(t, int32(9732), svc.Spec.Ports[0].Port)
	assert.Equal(t, int32(9732), svc.Spec.Ports[0].TargetPort.IntVal)
	assert.Equal(t, corev1.ProtocolTCP, svc.Spec.Ports[0].Protocol)
}

func TestApplyService_UpdatesExisting(t *testing.T) {
	existing := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:        "tezos-service-p2p",
			Namespace:   "testnet",
			Annotations: map[string]string{"keep": "me"},
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: map[string]string{"app": "old"},
			Ports: []corev1.ServicePort{{
				Name: "p2p", Port: 9732, Protocol: corev1.ProtocolTCP, NodePort: 31000,
			}},
		},
	}
	cs := k8sfake.NewSimpleClientset(existing)
	c := NewClientWithInterface(cs, time.Second)

	require.NoError(t, c.ApplyService(context.Background(), p2pRequest()))

	svc, err := cs.CoreV1().Services("testnet").Get(context.Background(), "tezos-service-p2p", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, corev1.ServiceTypeLoadBalancer, svc.Spec.Type)
	assert.Equal(t, map[string]string{"node_class": "tezos-baking-node"}, svc.Spec.Selector)
	assert.Equal(t, "me", svc.Annotations["keep"])
	assert.Equal(t, "testnet", svc.Labels[labels.KeyChain])
	assert.Equal(t, "fsn1", svc.Annotations["load-balancer.hetzner.cloud/location"])
	require.Len(t, svc.Spec.Ports, 1)
	assert.Equal(t, int32(31000), svc.Spec.Ports[0].NodePort)
}

func TestApplyService_DefaultsProtocol(t *testing.T) {
	req := p2pRequest()
	req.Protocol = ""
	svc := buildService(req)
	assert.Equal(t, corev1.ProtocolTCP, svc.Spec.Ports[0].Protocol)
}

func TestWaitForLoadBalancer(t *testing.T) {
	tests := []struct {
		name    string
		ingress []corev1.LoadBalancerIngress
		want    provisioning.LoadBalancerAddress
	}{
		{
			name:    "ip",
			ingress: []corev1.LoadBalancerIngress{{IP: "203.0.113.7"}},
			want:    provisioning.LoadBalancerAddress{IP: "203.0.113.7"},
		},
		{
			name:    "hostname",
			ingress: []corev1.LoadBalancerIngress{{Hostname: "lb.example.com"}},
			want:    provisioning.LoadBalancerAddress{Hostname: "lb.example.com"},
		},
		{
			name:    "skips empty entries",
			ingress: []corev1.LoadBalancerIngress{{}, {IP: "203.0.113.8"}},
			want:    provisioning.LoadBalancerAddress{IP: "203.0.113.8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &corev1.Service{
				ObjectMeta: metav1.ObjectMeta{Name: "tezos-service-p2p", Namespace: "testnet"},
				Status: corev1.ServiceStatus{
					LoadBalancer: corev1.LoadBalancerStatus{Ingress: tt.ingress},
				},
			}
			c := NewClientWithInterface(k8sfake.NewSimpleClientset(svc), time.Second)
			c.SetPollInterval(10 * time.Millisecond)

			addr, err := c.WaitForLoadBalancer(context.Background(), "testnet", "tezos-service-p2p")
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr)
		})
	}
}

func TestWaitForLoadBalancer_AssignedLater(t *testing.T) {
	cs := k8sfake.NewSimpleClientset()
	c := NewClientWithInterface(cs, 5*time.Second)
	c.SetPollInterval(10 * time.Millisecond)
	require.NoError(t, c.ApplyService(context.Background(), p2pRequest()))

	go func() {
		time.Sleep(50 * time.Millisecond)
		svc, err := cs.CoreV1().Services("testnet").Get(context.Background(), "tezos-service-p2p", metav1.GetOptions{})
		if err != nil {
			return
		}
		svc.Status.LoadBalancer.Ingress = []corev1.LoadBalancerIngress{{IP: "203.0.113.9"}}
		_, _ = cs.CoreV1().Services("testnet").UpdateStatus(context.Background(), svc, metav1.UpdateOptions{})
	}()

	addr, err := c.WaitForLoadBalancer(context.Background(), "testnet", "tezos-service-p2p")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", addr.Target())
}

func TestWaitForLoadBalancer_Timeout(t *testing.T) {
	c := NewClientWithInterface(k8sfake.NewSimpleClientset(), 50*time.Millisecond)
	c.SetPollInterval(10 * time.Millisecond)

	_, err := c.WaitForLoadBalancer(context.Background(), "testnet", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load balancer for testnet/missing not ready")
}

func TestWaitForLoadBalancer_APIError(t *testing.T) {
	cs := k8sfake.NewSimpleClientset()
	cs.PrependReactor("get", "services", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("unauthorized")
	})
	c := NewClientWithInterface(cs, time.Second)
	c.SetPollInterval(10 * time.Millisecond)

	_, err := c.WaitForLoadBalancer(context.Background(), "testnet", "tezos-service-p2p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestNewClientWithInterface_DefaultTimeout(t *testing.T) {
	c := NewClientWithInterface(k8sfake.NewSimpleClientset(), 0)
	assert.Equal(t, DefaultLoadBalancerTimeout, c.lbTimeout)
}

func TestNewClientFromBytes_Invalid(t *testing.T) {
	_, err := NewClientFromBytes([]byte("not: [valid"), time.Second)
	require.Error(t, err)
}

func TestNewClient_ReadsKubeconfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")

	_, err := NewClient(path, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read kubeconfig")

	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))
	c, err := NewClient(path, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.lbTimeout)
	assert.Equal(t, defaultPollInterval, c.pollInterval)
}
