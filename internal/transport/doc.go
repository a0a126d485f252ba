// Package transport implements the HTTP Transport (C11): a net/http
// RPC surface exposing exactly the five operations of spec.md §6 —
// ingest, wrap, accessKey, revoke, getMetadata — over
// internal/lifecycle.Engine, using the teacher's request/response
// idiom (ReadRequestBody, HandleRequest, MarshalBody, Respond,
// HandleRoute) generalized to the vault's own DTOs.
package transport
