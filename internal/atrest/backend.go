package atrest

import (
	"context"
	"errors"
	"sync"

	"github.com/cardanohealth/vault/internal/crypto"
	"github.com/cardanohealth/vault/internal/objectstore"
)

// ErrSealedBackendNoPayload mirrors objectstore.ErrMockNoPayload for a
// SealedBackend that was never Put under the requested id.
var ErrSealedBackendNoPayload = errors.New("atrest: sealed backend has no payload for id")

// SealedBackend is objectstore.Backend's at-rest counterpart: every
// Put seals the caller's bytes under the Manager's current KEK before
// storing them, and every Get opens the stored blob under whatever KEK
// sealed it. It doubles as a Rewrapper so a Sweeper can rotate its
// storage off a retiring KEK without the object-store adapter or the
// lifecycle engine ever knowing at-rest sealing is happening — the
// per-recipient envelope scheme (internal/crypto, internal/lifecycle)
// already gives every record owner and actor a wrapped copy of the
// CEK; SealedBackend is the second, storage-operator-only layer spec.md
// doesn't name but SPEC_FULL.md §4.9 adds.
type SealedBackend struct {
	manager *Manager

	mu    sync.RWMutex
	blobs map[string][]byte
	kekOf map[string]string
}

// NewSealedBackend builds a SealedBackend over manager.
func NewSealedBackend(manager *Manager) *SealedBackend {
	return &SealedBackend{
		manager: manager,
		blobs:   make(map[string][]byte),
		kekOf:   make(map[string]string),
	}
}

// Put seals bytes under the manager's current KEK and stores it keyed
// by the plaintext's content address, so the id a caller gets back is
// stable across a later Rewrap even though the stored ciphertext
// changes.
func (b *SealedBackend) Put(_ context.Context, bytes []byte) (string, error) {
	sealed, kekID, aerr := b.manager.Seal(bytes)
	if aerr != nil {
		return "", aerr
	}
	id := crypto.Sha256Hex(bytes)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[id] = sealed
	b.kekOf[id] = kekID
	return id, nil
}

// Get opens the blob stored under id with whichever KEK sealed it,
// including a KEK in its grace period.
func (b *SealedBackend) Get(_ context.Context, id string) ([]byte, error) {
	b.mu.RLock()
	sealed, ok := b.blobs[id]
	kekID := b.kekOf[id]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrSealedBackendNoPayload
	}

	plaintext, aerr := b.manager.Open(sealed, kekID)
	if aerr != nil {
		return nil, aerr
	}
	return plaintext, nil
}

// Unpin deletes id's stored blob, idempotently.
func (b *SealedBackend) Unpin(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[id]; !ok {
		return objectstore.ErrAlreadyUnpinned
	}
	delete(b.blobs, id)
	delete(b.kekOf, id)
	return nil
}

// BlobsSealedUnder implements Rewrapper: every id currently sealed
// under kekID.
func (b *SealedBackend) BlobsSealedUnder(_ context.Context, kekID string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var ids []string
	for id, k := range b.kekOf {
		if k == kekID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Rewrap implements Rewrapper: open id's blob under whichever KEK
// sealed it and reseal it under the manager's current KEK.
func (b *SealedBackend) Rewrap(_ context.Context, id string) error {
	b.mu.Lock()
	sealed, ok := b.blobs[id]
	oldKEKID := b.kekOf[id]
	b.mu.Unlock()
	if !ok {
		return ErrSealedBackendNoPayload
	}

	plaintext, aerr := b.manager.Open(sealed, oldKEKID)
	if aerr != nil {
		return aerr
	}
	resealed, newKEKID, aerr := b.manager.Seal(plaintext)
	if aerr != nil {
		return aerr
	}

	b.mu.Lock()
	b.blobs[id] = resealed
	b.kekOf[id] = newKEKID
	b.mu.Unlock()
	return nil
}

var _ objectstore.Backend = (*SealedBackend)(nil)
var _ Rewrapper = (*SealedBackend)(nil)
