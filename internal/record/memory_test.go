package record

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

func TestMemoryStoreUpsertAndGet(t *testing.T) {
	store := NewMemoryStore()
	rec := testRecord()

	require.Nil(t, store.Upsert(context.Background(), rec))

	got, aerr := store.GetByID(context.Background(), rec.RecordID)
	require.Nil(t, aerr)
	require.Equal(t, rec.RecordID, got.RecordID)
	require.Equal(t, rec.Owner, got.Owner)
}

func TestMemoryStoreGetMissingIsNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, aerr := store.GetByID(context.Background(), "missing")
	require.True(t, apierr.Is(aerr, apierr.NotFound))
}

func TestMemoryStoreListFiltersByOwner(t *testing.T) {
	store := NewMemoryStore()
	a := testRecord()
	a.RecordID = "rec-a"
	a.Owner = "owner-a"
	b := testRecord()
	b.RecordID = "rec-b"
	b.Owner = "owner-b"

	require.Nil(t, store.Upsert(context.Background(), a))
	require.Nil(t, store.Upsert(context.Background(), b))

	all, aerr := store.List(context.Background(), "")
	require.Nil(t, aerr)
	require.Len(t, all, 2)

	onlyA, aerr := store.List(context.Background(), "owner-a")
	require.Nil(t, aerr)
	require.Len(t, onlyA, 1)
	require.Equal(t, "rec-a", onlyA[0].RecordID)
}

func TestMemoryStorePatchWrappedKeysBumpsEpoch(t *testing.T) {
	store := NewMemoryStore()
	rec := testRecord()
	require.Nil(t, store.Upsert(context.Background(), rec))

	newKeys := map[string]entity.WrappedKeyEnvelope{
		"actor-1": {Tag: entity.EnvelopeX25519, Ciphertext: []byte("wrapped")},
	}
	require.Nil(t, store.PatchWrappedKeys(context.Background(), rec.RecordID, newKeys, 2))

	got, aerr := store.GetByID(context.Background(), rec.RecordID)
	require.Nil(t, aerr)
	require.Equal(t, 2, got.Epoch)
	require.Contains(t, got.WrappedKeys, "actor-1")
}

func TestMemoryStoreConcurrentPatchesAreSerialized(t *testing.T) {
	store := NewMemoryStore()
	rec := testRecord()
	require.Nil(t, store.Upsert(context.Background(), rec))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		epoch := i
		go func() {
			defer wg.Done()
			_ = store.PatchWrappedKeys(context.Background(), rec.RecordID, map[string]entity.WrappedKeyEnvelope{}, epoch)
		}()
	}
	wg.Wait()

	got, aerr := store.GetByID(context.Background(), rec.RecordID)
	require.Nil(t, aerr)
	require.GreaterOrEqual(t, got.Epoch, 1)
}
