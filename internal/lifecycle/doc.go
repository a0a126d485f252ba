// Package lifecycle implements the Lifecycle Engine (C6): the
// orchestrator wiring envelope cryptography, the object store adapter,
// CEK custody, the record store, the permission oracle and the audit
// journal into the four user-visible operations — ingest, wrap,
// accessKey, revoke — and their state machine. The rate/signature gate
// is applied in front of the engine, by internal/transport.
package lifecycle
