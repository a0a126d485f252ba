package objectstore

import (
	"context"
	"errors"
	"log/slog"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/retry"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdapterUploadDownloadRoundtrip(t *testing.T) {
	backend := NewMockBackend()
	adapter := New(backend, retry.DefaultPolicy(), discardLogger())

	payload := []byte("patient record bytes")
	cid, aerr := adapter.Upload(context.Background(), payload)
	require.Nil(t, aerr)
	require.Equal(t, contentAddress(payload), cid)

	got, aerr := adapter.Download(context.Background(), cid)
	require.Nil(t, aerr)
	require.Equal(t, payload, got)
}

func TestAdapterDownloadMissingCIDIsNotFound(t *testing.T) {
	backend := NewMockBackend()
	adapter := New(backend, retry.Policy{MaxAttempts: 1, BackoffBaseMs: 1}, discardLogger())

	_, aerr := adapter.Download(context.Background(), "no-such-cid")
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.NotFound))
}

func TestAdapterUnpinIsIdempotent(t *testing.T) {
	backend := NewMockBackend()
	adapter := New(backend, retry.DefaultPolicy(), discardLogger())

	payload := []byte("to be revoked")
	cid, aerr := adapter.Upload(context.Background(), payload)
	require.Nil(t, aerr)

	require.Nil(t, adapter.Unpin(context.Background(), cid))
	// Second unpin of the same cid must not surface as an error.
	require.Nil(t, adapter.Unpin(context.Background(), cid))
}

// flakyBackend fails the first N Put/Get calls, then succeeds, so the
// retry policy's attempt counting can be exercised directly.
type flakyBackend struct {
	*MockBackend
	failures int32
	puts     int32
	gets     int32
}

func newFlakyBackend(failures int32) *flakyBackend {
	return &flakyBackend{MockBackend: NewMockBackend(), failures: failures}
}

func (f *flakyBackend) Put(ctx context.Context, bytes []byte) (string, error) {
	if atomic.AddInt32(&f.puts, 1) <= f.failures {
		return "", errors.New("transient upload failure")
	}
	return f.MockBackend.Put(ctx, bytes)
}

func (f *flakyBackend) Get(ctx context.Context, cid string) ([]byte, error) {
	if atomic.AddInt32(&f.gets, 1) <= f.failures {
		return nil, errors.New("transient download failure")
	}
	return f.MockBackend.Get(ctx, cid)
}

func TestAdapterRetriesTransientUploadFailures(t *testing.T) {
	backend := newFlakyBackend(2)
	adapter := New(backend, retry.Policy{MaxAttempts: 3, BackoffBaseMs: 1}, discardLogger())

	payload := []byte("retry me")
	cid, aerr := adapter.Upload(context.Background(), payload)
	require.Nil(t, aerr)
	require.Equal(t, contentAddress(payload), cid)
	require.EqualValues(t, 3, backend.puts)
}

func TestAdapterSurfacesStorageUnavailableOnExhaustion(t *testing.T) {
	backend := newFlakyBackend(100)
	adapter := New(backend, retry.Policy{MaxAttempts: 2, BackoffBaseMs: 1}, discardLogger())

	_, aerr := adapter.Upload(context.Background(), []byte("never works"))
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.StorageUnavailable))
	require.EqualValues(t, 2, backend.puts)
}

func TestAdapterPerAttemptTimeoutBoundsEachAttempt(t *testing.T) {
	backend := NewMockBackend()
	policy := retry.Policy{MaxAttempts: 1, BackoffBaseMs: 1, PerAttemptTimeout: time.Nanosecond}
	adapter := New(backend, policy, discardLogger())

	ctx, cancel := withPerAttemptTimeout(context.Background(), policy)
	defer cancel()
	<-ctx.Done()
	require.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	_ = adapter // adapter construction itself must not panic under a near-zero timeout
}
