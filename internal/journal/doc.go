// Package journal implements the Audit Journal (C7): an append-only
// log of fixed-kind events threaded by requestId. Sensitive fields
// (plaintext, CEKs, unwrapped keys, wallet private keys, raw file
// contents) are rejected at construction time rather than redacted
// after the fact, so a leak can never reach the sink.
package journal
