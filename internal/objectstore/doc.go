// Package objectstore adapts the vault's encrypted packages to a
// content-addressed backing store. Production deployments pin against
// IPFS/Pinata (out of scope for this core — see SPEC_FULL.md §1); this
// package defines the interface the lifecycle engine consumes plus a
// mock implementation used by tests and local development.
package objectstore
