package atrest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRewrapper struct {
	mu          sync.Mutex
	sealedUnder map[string][]string // kekID -> blob IDs
	rewrapped   []string
}

func (f *fakeRewrapper) BlobsSealedUnder(_ context.Context, kekID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sealedUnder[kekID]...), nil
}

func (f *fakeRewrapper) Rewrap(_ context.Context, blobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewrapped = append(f.rewrapped, blobID)
	for kekID, blobs := range f.sealedUnder {
		for i, b := range blobs {
			if b == blobID {
				f.sealedUnder[kekID] = append(blobs[:i], blobs[i+1:]...)
			}
		}
	}
	return nil
}

func TestSweeperRewrapsBlobsOffGraceKEK(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	mgr, err := NewManager(rmk, 1, DefaultRotationPolicy())
	require.NoError(t, err)
	oldKEKID := mgr.CurrentKEKID()

	_, err = mgr.RotateKEK()
	require.NoError(t, err)
	require.Contains(t, mgr.GraceKEKIDs(), oldKEKID)

	store := &fakeRewrapper{sealedUnder: map[string][]string{
		oldKEKID: {"blob-1", "blob-2"},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(mgr, store, DefaultRotationPolicy(), 10*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.rewrapped) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	sweeper.Stop()
}
