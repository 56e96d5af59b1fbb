package labels

// Standard label keys.
const (
	// KeyChain identifies which chain deployment an object belongs to.
	KeyChain = "tzchain.io/chain"

	// KeyComponent identifies the part of the deployment (namespace, p2p).
	KeyComponent = "app.kubernetes.io/component"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyPartOf groups the objects of one Helm release.
	KeyPartOf = "app.kubernetes.io/part-of"
)

// ManagedByTzchain is the value of KeyManagedBy.
const ManagedByTzchain = "tzchain"

// Component values.
const (
	ComponentNamespace = "namespace"
	ComponentP2P       = "p2p"
)

// LabelBuilder builds the label set of one object.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the chain and manager labels set.
func NewLabelBuilder(chain string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyChain:     chain,
			KeyManagedBy: ManagedByTzchain,
		},
	}
}

// WithComponent sets the component label.
func (lb *LabelBuilder) WithComponent(component string) *LabelBuilder {
	lb.labels[KeyComponent] = component
	return lb
}

// WithRelease sets the part-of label to the Helm release name.
func (lb *LabelBuilder) WithRelease(release string) *LabelBuilder {
	lb.labels[KeyPartOf] = release
	return lb
}

// Build returns a copy of the labels.
func (lb *LabelBuilder) Build() map[string]string {
	out := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		out[k] = v
	}
	return out
}
