package chain

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	"github.com/imamik/tzchain/internal/util/async"
)

func deploymentWith(values *config.ChainValues) *Deployment {
	return newDeployment(config.Params{Name: "ghostnet", Description: "test chain"}, &provisioning.State{
		Defaults: &config.ChartDefaults{ChainName: "default-chain"},
		Values:   values,
	})
}

var _ = Describe("Deployment accessors", func() {
	Describe("ConsensusCommand", func() {
		It("joins the protocols list in order", func() {
			d := deploymentWith(&config.ChainValues{
				Protocols: []config.Protocol{{Command: "a"}, {Command: "b"}},
			})

			Expect(d.ConsensusCommand()).To(Equal("a, b"))
		})

		It("returns the single protocol command", func() {
			d := deploymentWith(&config.ChainValues{Protocol: &config.Protocol{Command: "PtParisB"}})

			Expect(d.ConsensusCommand()).To(Equal("PtParisB"))
		})

		It("fails when neither shape is present", func() {
			_, err := deploymentWith(&config.ChainValues{}).ConsensusCommand()

			var missing *config.MissingFieldError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Field).To(Equal("protocols"))
		})

		It("fails when both shapes are present", func() {
			d := deploymentWith(&config.ChainValues{
				Protocols: []config.Protocol{{Command: "a"}},
				Protocol:  &config.Protocol{Command: "b"},
			})

			_, err := d.ConsensusCommand()

			var conflict *config.ConflictingFieldsError
			Expect(errors.As(err, &conflict)).To(BeTrue())
			Expect(conflict.Fields).To(ConsistOf("protocols", "protocol"))
		})

		It("fails when the single protocol has no command", func() {
			_, err := deploymentWith(&config.ChainValues{Protocol: &config.Protocol{}}).ConsensusCommand()

			var missing *config.MissingFieldError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Field).To(Equal("protocol.command"))
		})
	})

	Describe("NetworkURL", func() {
		It("returns the bare instance name without an activation account", func() {
			d := deploymentWith(&config.ChainValues{})

			Expect(d.NetworkURL("", "")).To(Equal("ghostnet"))
			Expect(d.NetworkURL("https://networks.example", "custom")).To(Equal("ghostnet"))
		})

		DescribeTable("builds a URL with an activation account",
			func(base, relative, want string) {
				account := "baker"
				d := deploymentWith(&config.ChainValues{
					Network: config.NetworkConfig{ActivationAccountName: &account},
				})

				Expect(d.NetworkURL(base, relative)).To(Equal(want))
			},
			Entry("defaults", "", "", config.DefaultNetworkBaseURL+"/ghostnet"),
			Entry("custom base", "https://networks.example/", "", "https://networks.example/ghostnet"),
			Entry("custom relative", "", "/weeklynet-2024", config.DefaultNetworkBaseURL+"/weeklynet-2024"),
		)

		It("treats a null activation account as present", func() {
			values, err := config.ParseValues([]byte("node_config_network:\n  activation_account_name:\n"))
			Expect(err).NotTo(HaveOccurred())

			Expect(deploymentWith(values).NetworkURL("", "")).To(Equal(config.DefaultNetworkBaseURL + "/ghostnet"))
		})
	})

	Describe("ChainName", func() {
		It("prefers the resolved values", func() {
			d := deploymentWith(&config.ChainValues{Network: config.NetworkConfig{ChainName: "mainnet"}})

			Expect(d.ChainName()).To(Equal("mainnet"))
		})

		It("falls back to the chart default", func() {
			Expect(deploymentWith(&config.ChainValues{}).ChainName()).To(Equal("default-chain"))
		})

		It("fails when neither document names the chain", func() {
			d := newDeployment(config.Params{Name: "x"}, &provisioning.State{Values: &config.ChainValues{}})

			_, err := d.ChainName()

			var missing *config.MissingFieldError
			Expect(errors.As(err, &missing)).To(BeTrue())
		})
	})

	Describe("DockerImage and Description", func() {
		It("returns the tezos image", func() {
			d := deploymentWith(&config.ChainValues{Images: config.Images{Tezos: "tezos/tezos:v19.0"}})

			Expect(d.DockerImage()).To(Equal("tezos/tezos:v19.0"))
			Expect(d.Description()).To(Equal("test chain"))
		})

		It("fails without an image", func() {
			_, err := deploymentWith(&config.ChainValues{}).DockerImage()
			Expect(err).To(MatchError(ContainSubstring("images.tezos")))
		})
	})

	Describe("Values", func() {
		It("returns a copy", func() {
			values := &config.ChainValues{ToolImages: map[string]string{"utils": "u@sha256:1"}}
			d := deploymentWith(values)

			out := d.Values()
			out.ToolImages["utils"] = "changed"

			Expect(values.ToolImages["utils"]).To(Equal("u@sha256:1"))
		})
	})

	Describe("WaitForDNS", func() {
		It("returns immediately without a scheduled alias", func() {
			d := deploymentWith(&config.ChainValues{})

			Expect(d.DNSPending()).To(BeFalse())
			Expect(d.WaitForDNS(context.Background())).To(Succeed())
		})

		It("waits for the alias outcome", func() {
			release := make(chan struct{})
			d := deploymentWith(&config.ChainValues{})
			d.dns = async.Go(context.Background(), "alias", func(context.Context) error {
				<-release
				return errors.New("zone not found")
			})

			Expect(d.DNSPending()).To(BeTrue())
			close(release)
			Expect(d.WaitForDNS(context.Background())).To(MatchError(ContainSubstring("zone not found")))
			Expect(d.DNSPending()).To(BeFalse())
		})

		It("honours the caller's context", func() {
			block := make(chan struct{})
			DeferCleanup(func() { close(block) })
			d := deploymentWith(&config.ChainValues{})
			d.dns = async.Go(context.Background(), "alias", func(context.Context) error {
				<-block
				return nil
			})

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			Expect(d.WaitForDNS(ctx)).To(MatchError(context.DeadlineExceeded))
		})
	})
})
