// Package atrest implements encryption-at-rest for the object store's
// blobs (C9, ambient). SealedBackend is an objectstore.Backend that
// layers a second envelope on top of C1's encrypted packages: every
// blob it stores is sealed under a versioned Key Encryption Key (KEK),
// and every KEK is deterministically derived from a Root Master Key
// (RMK). cmd/vaultd generates the RMK in memory at startup and never
// writes it to disk. SplitRMK can split an RMK into Shamir shares;
// cmd/vaultd does not split its RMK. The record store's wrapped-key
// envelopes are not sealed by this package.
//
// The key hierarchy:
//
//	sealed blob → KEK (versioned, HKDF-derived) → RMK (root)
//
// This mirrors the teacher's RMK/KEK hierarchy for DEKs, generalized
// from "wrap a secret's DEK" to "seal an encrypted package before it
// reaches the object store".
package atrest
