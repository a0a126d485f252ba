// Package oracle implements the Permission Oracle (C5): a tiered
// check(recordId, actorId) that consults the L2 replica, the L1
// on-chain validator, a ZK membership proof, and finally a chain-scan
// fallback, in that fixed order, short-circuiting on a definitive
// answer. Results are cached per (recordId, actorId) for a bounded TTL.
package oracle
