package atrest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	mgr, err := NewManager(rmk, 1, DefaultRotationPolicy())
	require.NoError(t, err)

	blob, kekID, aerr := mgr.Seal([]byte("wrapped-key-envelope-bytes"))
	require.Nil(t, aerr)
	require.NotEmpty(t, kekID)

	plaintext, aerr := mgr.Open(blob, kekID)
	require.Nil(t, aerr)
	require.Equal(t, []byte("wrapped-key-envelope-bytes"), plaintext)
}

func TestRotateKEKMovesPreviousToGrace(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	mgr, err := NewManager(rmk, 1, DefaultRotationPolicy())
	require.NoError(t, err)

	firstBlob, firstKEKID, aerr := mgr.Seal([]byte("a"))
	require.Nil(t, aerr)

	_, err = mgr.RotateKEK()
	require.NoError(t, err)

	require.NotEqual(t, firstKEKID, mgr.CurrentKEKID())
	require.Contains(t, mgr.GraceKEKIDs(), firstKEKID)

	// A blob sealed under the now-retired-to-grace KEK must still open.
	plaintext, aerr := mgr.Open(firstBlob, firstKEKID)
	require.Nil(t, aerr)
	require.Equal(t, []byte("a"), plaintext)
}

func TestOpenRejectsRetiredKEK(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	policy := RotationPolicy{RotationDays: 1, MaxWraps: 1_000_000, GraceDays: 1}
	mgr, err := NewManager(rmk, 1, policy)
	require.NoError(t, err)

	blob, oldKEKID, aerr := mgr.Seal([]byte("payload"))
	require.Nil(t, aerr)

	_, err = mgr.RotateKEK()
	require.NoError(t, err)

	mgr.mu.Lock()
	meta := mgr.metadata[oldKEKID]
	meta.CreatedAt = time.Now().Add(-48 * time.Hour)
	mgr.metadata[oldKEKID] = meta
	mgr.mu.Unlock()

	mgr.CleanupGracePeriodKEKs()

	_, aerr = mgr.Open(blob, oldKEKID)
	require.NotNil(t, aerr)
}

func TestShouldRotateOnWrapCount(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	policy := RotationPolicy{RotationDays: 0, MaxWraps: 2, GraceDays: DefaultGraceDays}
	mgr, err := NewManager(rmk, 1, policy)
	require.NoError(t, err)

	require.False(t, mgr.ShouldRotate())

	_, _, aerr := mgr.Seal([]byte("1"))
	require.Nil(t, aerr)
	_, _, aerr = mgr.Seal([]byte("2"))
	require.Nil(t, aerr)

	require.True(t, mgr.ShouldRotate())
}
