// Package genesis stages bootstrap contracts and the bootstrap commitments
// file of an activating chain into public object storage, and points the
// activation section of the chain values at the published URLs.
//
// Nothing is staged unless the values carry an activation section and the
// chain parameters name at least one bootstrap file.
package genesis
