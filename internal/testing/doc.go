// Package testing provides test utilities, mocks, and fixtures shared by the
// provisioning stages and the chain package.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - Mock collaborators (object store, image builder, chart installer,
//     cluster client, DNS registrar) built on testify/mock
//   - RecordingObserver: a concurrency-safe Observer that keeps every event
//   - ChainFixture: an on-disk override document, chart defaults and
//     bootstrap files for one chain instance
//
// Usage:
//
//	fixture := testing.NewChainFixture(t).WithActivation().WithContracts("a.json")
//	ctx, observer := testing.NewContext(t, fixture.Params())
package testing
