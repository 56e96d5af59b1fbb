package handlers

import (
	"bytes"
	"os"
	"testing"

	"github.com/go-logr/logr"

	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/provisioning"
	testutil "github.com/imamik/tzchain/internal/testing"
)

// saveAndRestoreFactories restores every factory variable after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()

	origLoadConfigFile := loadConfigFile
	origStatFile := statFile
	origRenderChain := renderChain
	origNewObjectStore := newObjectStore
	origNewImageBuilder := newImageBuilder
	origNewClusterClient := newClusterClient
	origNewChartInstaller := newChartInstaller
	origNewDNSRegistrar := newDNSRegistrar
	origNewTelemetry := newTelemetry
	origDeployChain := deployChain
	origCheckPrerequisites := checkPrerequisites
	origConfirmDeploy := confirmDeploy
	origIsInteractiveTTY := isInteractiveTTY
	origStdout := stdout

	t.Cleanup(func() {
		loadConfigFile = origLoadConfigFile
		statFile = origStatFile
		renderChain = origRenderChain
		newObjectStore = origNewObjectStore
		newImageBuilder = origNewImageBuilder
		newClusterClient = origNewClusterClient
		newChartInstaller = origNewChartInstaller
		newDNSRegistrar = origNewDNSRegistrar
		newTelemetry = origNewTelemetry
		deployChain = origDeployChain
		checkPrerequisites = origCheckPrerequisites
		confirmDeploy = origConfirmDeploy
		isInteractiveTTY = origIsInteractiveTTY
		stdout = origStdout
	})
}

// fakeCollaborators wires testify mocks into the factory variables.
type fakeCollaborators struct {
	store   *testutil.MockObjectStore
	builder *testutil.MockImageBuilder
	charts  *testutil.MockChartInstaller
	cluster *testutil.MockClusterClient
	dns     *testutil.MockDNSRegistrar
}

func installFakes(t *testing.T, cfg *config.File) (*fakeCollaborators, *bytes.Buffer) {
	t.Helper()
	saveAndRestoreFactories(t)

	f := &fakeCollaborators{
		store:   &testutil.MockObjectStore{},
		builder: &testutil.MockImageBuilder{},
		charts:  &testutil.MockChartInstaller{},
		cluster: &testutil.MockClusterClient{},
		dns:     &testutil.MockDNSRegistrar{},
	}

	loadConfigFile = func(string) (*config.File, error) { return cfg, nil }
	newObjectStore = func(config.StorageSettings) (provisioning.ObjectStore, error) { return f.store, nil }
	newImageBuilder = func(config.RegistrySettings) (provisioning.ImageBuilder, error) { return f.builder, nil }
	newClusterClient = func(config.ClusterSettings) (provisioning.ClusterClient, error) { return f.cluster, nil }
	newChartInstaller = func(config.ClusterSettings, logr.Logger) (provisioning.ChartInstaller, error) {
		return f.charts, nil
	}
	isInteractiveTTY = func() bool { return false }
	checkPrerequisites = func(*config.File) error { return nil }

	var out bytes.Buffer
	stdout = &out
	return f, &out
}

func testConfig(t *testing.T) *config.File {
	t.Helper()
	return &config.File{
		Chain: testutil.NewChainFixture(t).Params(),
		Cluster: config.ClusterSettings{
			ChartPath:       "tezos-k8s/charts/tezos",
			ChartSourceRoot: "tezos-k8s",
		},
		Network:     config.NetworkSettings{BaseURL: config.DefaultNetworkBaseURL},
		Concurrency: 2,
	}
}


func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
