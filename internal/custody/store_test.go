package custody

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/stretchr/testify/require"
)

func TestStorePutGetRoundtrip(t *testing.T) {
	store := New(time.Minute)
	store.Put("record-1", []byte("cek-bytes"))

	cek, aerr := store.Get("record-1")
	require.Nil(t, aerr)
	require.Equal(t, []byte("cek-bytes"), cek)
}

func TestStoreGetMissingIsNotFound(t *testing.T) {
	store := New(time.Minute)
	_, aerr := store.Get("never-parked")
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.NotFound))
}

func TestStorePutReplacesExistingEntry(t *testing.T) {
	store := New(time.Minute)
	store.Put("record-1", []byte("first"))
	store.Put("record-1", []byte("second"))

	cek, aerr := store.Get("record-1")
	require.Nil(t, aerr)
	require.Equal(t, []byte("second"), cek)
}

func TestStoreEvictIsIdempotent(t *testing.T) {
	store := New(time.Minute)
	store.Put("record-1", []byte("cek"))
	store.Evict("record-1")
	store.Evict("record-1")

	_, aerr := store.Get("record-1")
	require.True(t, apierr.Is(aerr, apierr.NotFound))
}

func TestStoreExpiredEntryIsNotReturned(t *testing.T) {
	store := New(time.Millisecond)
	store.Put("record-1", []byte("cek"))
	time.Sleep(5 * time.Millisecond)

	_, aerr := store.Get("record-1")
	require.True(t, apierr.Is(aerr, apierr.NotFound))
}

func TestSweeperEvictsExpiredEntries(t *testing.T) {
	store := New(2 * time.Millisecond)
	store.Put("record-1", []byte("cek"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(store, 3*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	defer func() {
		cancel()
		sweeper.Stop()
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		_, ok := store.m["record-1"]
		return !ok
	}, time.Second, 2*time.Millisecond)
}
