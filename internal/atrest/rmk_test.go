package atrest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAndRecoverRMKRoundtrip(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	shares, err := SplitRMK(rmk, 5, 3)
	require.NoError(t, err)
	require.Len(t, shares, 5)

	recovered, err := RecoverRMK(3, shares[:3])
	require.NoError(t, err)
	require.Equal(t, rmk, recovered)
}

func TestRecoverRMKInsufficientSharesFails(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	shares, err := SplitRMK(rmk, 5, 3)
	require.NoError(t, err)

	_, err = RecoverRMK(3, shares[:2])
	require.Error(t, err)
}

func TestSplitRMKRejectsInvalidThreshold(t *testing.T) {
	rmk, err := GenerateRMK()
	require.NoError(t, err)

	_, err = SplitRMK(rmk, 3, 0)
	require.Error(t, err)

	_, err = SplitRMK(rmk, 3, 4)
	require.Error(t, err)
}
