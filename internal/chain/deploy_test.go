package chain

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	testutil "github.com/imamik/tzchain/internal/testing"
)

type collaborators struct {
	store   *testutil.MockObjectStore
	builder *testutil.MockImageBuilder
	charts  *testutil.MockChartInstaller
	cluster *testutil.MockClusterClient
	dns     *testutil.MockDNSRegistrar
}

func newCollaborators() *collaborators {
	return &collaborators{
		store:   &testutil.MockObjectStore{},
		builder: &testutil.MockImageBuilder{},
		charts:  &testutil.MockChartInstaller{},
		cluster: &testutil.MockClusterClient{},
		dns:     &testutil.MockDNSRegistrar{},
	}
}

func (c *collaborators) all() Collaborators {
	return Collaborators{Store: c.store, Builder: c.builder, Charts: c.charts, Cluster: c.cluster, DNS: c.dns}
}

func (c *collaborators) expectRelease() {
	c.cluster.On("EnsureNamespace", mock.Anything, "testnet").Return(nil)
	c.cluster.On("ApplyService", mock.Anything, mock.Anything).Return(nil)
	c.cluster.On("WaitForLoadBalancer", mock.Anything, "testnet", "testnet-p2p-lb").
		Return(provisioning.LoadBalancerAddress{IP: "198.51.100.4"}, nil)
	c.dns.On("CreateAlias", mock.Anything, "testnet.chains.example.com", "198.51.100.4").Return(nil)
}

func (c *collaborators) expectChart() {
	c.charts.On("InstallChart", mock.Anything, mock.Anything).Return(nil)
}

func (c *collaborators) expectImages() {
	c.builder.On("BuildAndPush", mock.Anything, "tezos-k8s/utils").Return("registry.example/utils@sha256:abc", nil)
}

func deployOptions() Options {
	return Options{
		ChartPath:       "tezos-k8s/charts/tezos",
		ChartSourceRoot: "tezos-k8s",
		Zone:            "chains.example.com",
		Concurrency:     2,
		Observer:        testutil.NewRecordingObserver(),
	}
}

var _ = Describe("Deploy", func() {
	var (
		ctx    context.Context
		collab *collaborators
	)

	BeforeEach(func() {
		ctx = context.Background()
		collab = newCollaborators()
	})

	It("runs every stage and exposes the resolved values", func() {
		params := testutil.NewChainFixture(GinkgoT()).
			WithActivation().
			WithContracts("genesis.json").
			WithParams(func(p *config.Params) {
				p.ChainName = "mainnet"
				p.Image = "tezos/tezos:v20.0"
				p.Peers = []string{"peer-1.example:9732"}
			}).
			Params()

		collab.store.On("CreatePublicBucket", mock.Anything, "testnet-bootstrap").Return(nil)
		collab.store.On("StageObject", mock.Anything, mock.Anything).
			Return("https://testnet-bootstrap.objects.example/genesis.json", nil)
		collab.expectImages()
		collab.expectChart()
		collab.expectRelease()

		d, err := Deploy(ctx, params, collab.all(), deployOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(d.WaitForDNS(ctx)).To(Succeed())

		Expect(d.Name()).To(Equal("testnet"))
		Expect(d.ChainName()).To(Equal("mainnet"))
		Expect(d.DockerImage()).To(Equal("tezos/tezos:v20.0"))
		Expect(d.ConsensusCommand()).To(Equal("PtParisB"))
		Expect(d.ServiceName()).To(Equal("testnet-p2p-lb"))

		values := d.Values()
		Expect(values.Activation.BootstrapContractURLs).To(Equal([]string{"https://testnet-bootstrap.objects.example/genesis.json"}))
		Expect(values.ToolImages).To(Equal(map[string]string{"utils": "registry.example/utils@sha256:abc"}))
		Expect(values.BootstrapPeers).To(Equal([]string{"peer-1.example:9732"}))

		collab.store.AssertExpectations(GinkgoT())
		collab.builder.AssertNotCalled(GinkgoT(), "BuildAndPush", mock.Anything, "tezos-k8s/zerotier")
		collab.dns.AssertExpectations(GinkgoT())
	})

	It("sends the resolved values to the chart", func() {
		params := testutil.NewChainFixture(GinkgoT()).Params()
		collab.expectImages()
		collab.expectRelease()

		var payload map[string]any
		collab.charts.On("InstallChart", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			payload = args.Get(1).(provisioning.ChartRequest).Values
		})

		_, err := Deploy(ctx, params, collab.all(), deployOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(payload).To(HaveKeyWithValue("tezos_k8s_images", HaveKeyWithValue("utils", "registry.example/utils@sha256:abc")))
		Expect(payload).To(HaveKey("nodes"))
		Expect(payload).To(HaveKeyWithValue("accounts", HaveKeyWithValue("baker", HaveKeyWithValue("key", "edsk-baker"))))
	})

	It("skips genesis publishing without an activation section", func() {
		params := testutil.NewChainFixture(GinkgoT()).WithCommitments("commitments.json").Params()
		collab.expectImages()
		collab.expectChart()
		collab.expectRelease()

		d, err := Deploy(ctx, params, collab.all(), deployOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(collab.store.Calls).To(BeEmpty())
		Expect(d.Values().Activation).To(BeNil())
		Expect(d.NetworkURL("", "")).To(Equal("testnet"))
	})

	It("aborts on the first failing stage", func() {
		params := testutil.NewChainFixture(GinkgoT()).Params()
		collab.builder.On("BuildAndPush", mock.Anything, mock.Anything).Return("", errors.New("registry unavailable"))

		d, err := Deploy(ctx, params, collab.all(), deployOptions())

		Expect(d).To(BeNil())
		Expect(err).To(MatchError(ContainSubstring("images phase failed")))
		var collabErr *provisioning.CollaboratorError
		Expect(errors.As(err, &collabErr)).To(BeTrue())
		collab.cluster.AssertNotCalled(GinkgoT(), "EnsureNamespace", mock.Anything, mock.Anything)
	})

	It("reports unreadable documents", func() {
		params := testutil.NewChainFixture(GinkgoT()).Params()
		Expect(os.Remove(params.ValuesPath)).To(Succeed())

		_, err := Deploy(ctx, params, collab.all(), deployOptions())

		var ioErr *config.IOError
		Expect(errors.As(err, &ioErr)).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring("load phase failed")))
	})

	It("rejects incomplete parameters", func() {
		_, err := Deploy(ctx, config.Params{}, collab.all(), deployOptions())

		Expect(err).To(MatchError(ContainSubstring("chain.name is required")))
	})
})

var _ = Describe("Render", func() {
	It("merges parameters without calling collaborators", func() {
		params := testutil.NewChainFixture(GinkgoT()).
			WithParams(func(p *config.Params) { p.BakingPrivateKey = "edsk-override" }).
			Params()

		values, err := Render(context.Background(), params, Options{Observer: testutil.NewRecordingObserver()})

		Expect(err).NotTo(HaveOccurred())
		Expect(values.Accounts[config.BakerAccount].Key).To(Equal("edsk-override"))
		Expect(values.Accounts[config.NonBakerAccount].Key).To(Equal("edsk-non-baker"))
		Expect(values.Network.ChainName).To(Equal("testnet"))
	})

	It("reports malformed documents", func() {
		fixture := testutil.NewChainFixture(GinkgoT()).WithOverride("accounts: [unclosed\n")
		params := fixture.Params()
		Expect(filepath.Dir(params.ValuesPath)).To(Equal(fixture.Dir()))

		_, err := Render(context.Background(), params, Options{Observer: testutil.NewRecordingObserver()})

		var parseErr *config.ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	})
})
