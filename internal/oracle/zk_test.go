package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardanohealth/vault/internal/entity"
)

type stubRequester struct {
	proof []byte
	err   error
}

func (s stubRequester) RequestProof(context.Context, string, string, []byte) ([]byte, error) {
	return s.proof, s.err
}

type stubVerifier struct {
	granted bool
	err     error
}

func (s stubVerifier) Verify([]byte, []byte, string) (bool, error) {
	return s.granted, s.err
}

func TestZKSourceDisabledFallsThrough(t *testing.T) {
	zk := NewZKSource()
	zk.SetCommitment("rec-1", []byte("commitment"))

	result, err := zk.Check(context.Background(), "rec-1", "actor-2")
	require.NoError(t, err)
	require.Equal(t, Fallthrough, result.Decision)
}

func TestZKSourceGrantsOnVerifiedProof(t *testing.T) {
	zk := NewZKSource()
	zk.SetCommitment("rec-1", []byte("commitment"))
	zk.Enable(stubRequester{proof: []byte("proof-bytes")}, stubVerifier{granted: true})

	result, err := zk.Check(context.Background(), "rec-1", "actor-2")
	require.NoError(t, err)
	require.Equal(t, Granted, result.Decision)
	require.Equal(t, entity.SourceZK, result.Source)
	require.Equal(t, []byte("proof-bytes"), result.Evidence)
}

func TestZKSourceMissingCommitmentFallsThrough(t *testing.T) {
	zk := NewZKSource()
	zk.Enable(stubRequester{proof: []byte("x")}, stubVerifier{granted: true})

	result, err := zk.Check(context.Background(), "rec-missing", "actor-2")
	require.NoError(t, err)
	require.Equal(t, Fallthrough, result.Decision)
}
