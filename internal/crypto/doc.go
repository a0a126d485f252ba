// Package crypto implements the envelope cryptography of the vault: CEK
// generation, AES-256-GCM content encryption, and the two key-wrap
// schemes (X25519+HKDF+AES-GCM, RSA-OAEP-SHA256) used to give each
// authorized actor their own copy of a record's content-encryption key.
//
// Every operation here is pure: no component in this package touches the
// record store, the object store, or the network. Callers are
// responsible for zeroing key material they no longer need; this package
// never caches a key across calls.
package crypto
