package oracle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOracleL2FastPathGrant(t *testing.T) {
	l2 := NewL2Source()
	l2.Accept(entity.Snapshot{
		Records: map[string]entity.SnapshotRecordEntry{
			"rec-1": {PermittedActors: []string{"actor-2"}},
		},
	})
	o := New(l2, NewL1Source(), NewZKSource(), NewChainSource(), time.Minute, discardLogger())

	granted, source, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)
	require.True(t, granted)
	require.Equal(t, entity.SourceL2, source)
}

// TestOracleTieringScenario mirrors spec.md §8's oracle-tiering e2e
// scenario: no L2 snapshot, an L1 UTxO granting actor-2, ZK disabled,
// chain scan granting actor-2 and actor-3. The first check must land
// on L1; after removing the L1 UTxO, the next check for the same actor
// must fall through to Chain.
func TestOracleTieringScenario(t *testing.T) {
	l1 := NewL1Source()
	l1.SetUTXOs([]entity.ValidatorDatum{
		{RecordID: []byte("rec-1"), PermittedActors: [][]byte{[]byte("actor-2")}},
	})
	chain := NewChainSource()
	chain.Publish(entity.ChainMetadataPayload{
		RecordID:        "rec-1",
		PermittedActors: []string{"actor-2", "actor-3"},
	})
	o := New(NewL2Source(), l1, NewZKSource(), chain, time.Minute, discardLogger())

	granted, source, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)
	require.True(t, granted)
	require.Equal(t, entity.SourceL1, source)

	// Remove the L1 UTxO and evict the cached answer (as revoke would),
	// then the same check must fall all the way through to Chain.
	l1.SetUTXOs(nil)
	o.Evict("rec-1", "actor-2")

	granted, source, _, aerr = o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)
	require.True(t, granted)
	require.Equal(t, entity.SourceChain, source)
}

func TestOracleL2DenialStopsTheChain(t *testing.T) {
	l2 := NewL2Source()
	l2.Accept(entity.Snapshot{
		Records: map[string]entity.SnapshotRecordEntry{
			"rec-1": {PermittedActors: []string{"actor-9"}},
		},
	})
	chain := NewChainSource()
	chain.Publish(entity.ChainMetadataPayload{
		RecordID:        "rec-1",
		PermittedActors: []string{"actor-2"},
	})
	o := New(l2, NewL1Source(), NewZKSource(), chain, time.Minute, discardLogger())

	granted, source, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)
	require.False(t, granted)
	require.Equal(t, entity.SourceL2, source)
}

func TestOracleAllSourcesExhaustedReturnsOracleUnavailable(t *testing.T) {
	o := New(NewL2Source(), NewL1Source(), NewZKSource(), NewChainSource(), time.Minute, discardLogger())

	_, _, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.OracleUnavailable))
}

type erroringSource struct{}

func (erroringSource) Check(context.Context, string, string) (Result, error) {
	return Result{}, errors.New("transient source failure")
}

func TestOracleSourceErrorIsNonFatalAndAdvances(t *testing.T) {
	chain := NewChainSource()
	chain.Publish(entity.ChainMetadataPayload{RecordID: "rec-1", PermittedActors: []string{"actor-2"}})
	o := New(erroringSource{}, erroringSource{}, erroringSource{}, chain, time.Minute, discardLogger())

	granted, source, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)
	require.True(t, granted)
	require.Equal(t, entity.SourceChain, source)
}

func TestOracleCachesDefinitiveAnswers(t *testing.T) {
	l2 := NewL2Source()
	l2.Accept(entity.Snapshot{
		Records: map[string]entity.SnapshotRecordEntry{
			"rec-1": {PermittedActors: []string{"actor-2"}},
		},
	})
	o := New(l2, NewL1Source(), NewZKSource(), NewChainSource(), time.Minute, discardLogger())

	_, _, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)

	// Clearing L2 must not change the cached answer within the TTL.
	l2.Clear()
	granted, source, _, aerr := o.Check(context.Background(), "rec-1", "actor-2")
	require.Nil(t, aerr)
	require.True(t, granted)
	require.Equal(t, entity.SourceL2, source)
}

func TestOracleEvictRecordDropsAllActors(t *testing.T) {
	l2 := NewL2Source()
	l2.Accept(entity.Snapshot{
		Records: map[string]entity.SnapshotRecordEntry{
			"rec-1": {PermittedActors: []string{"actor-2", "actor-3"}},
		},
	})
	o := New(l2, NewL1Source(), NewZKSource(), NewChainSource(), time.Minute, discardLogger())

	_, _, _, _ = o.Check(context.Background(), "rec-1", "actor-2")
	_, _, _, _ = o.Check(context.Background(), "rec-1", "actor-3")

	o.EvictRecord("rec-1")
	_, ok := o.lookupCache(cacheKey{recordID: "rec-1", actorID: "actor-2"})
	require.False(t, ok)
	_, ok = o.lookupCache(cacheKey{recordID: "rec-1", actorID: "actor-3"})
	require.False(t, ok)
}
