// Package custody implements CEK Custody (C3): a TTL-bound parking spot
// for content-encryption keys between ingest and wrap. A CEK never
// touches the record store or the object store in the clear; custody is
// the only place it exists in memory, and only for a bounded window.
package custody
