package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardanohealth/vault/internal/apierr"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l := NewLimiter(map[Bucket]BucketLimits{
		BucketSensitive: {Limit: 3, Window: time.Minute},
	})

	for i := 0; i < 3; i++ {
		_, aerr := l.Allow("wallet-1", BucketSensitive)
		require.Nil(t, aerr)
	}

	_, aerr := l.Allow("wallet-1", BucketSensitive)
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.RateLimited))
}

func TestLimiterWindowResets(t *testing.T) {
	l := NewLimiter(map[Bucket]BucketLimits{
		BucketSensitive: {Limit: 1, Window: 5 * time.Millisecond},
	})

	_, aerr := l.Allow("wallet-1", BucketSensitive)
	require.Nil(t, aerr)

	_, aerr = l.Allow("wallet-1", BucketSensitive)
	require.NotNil(t, aerr)

	time.Sleep(10 * time.Millisecond)
	_, aerr = l.Allow("wallet-1", BucketSensitive)
	require.Nil(t, aerr)
}

func TestLimiterBucketsAreIndependent(t *testing.T) {
	l := NewLimiter(map[Bucket]BucketLimits{
		BucketSensitive: {Limit: 1, Window: time.Minute},
		BucketGeneral:   {Limit: 1, Window: time.Minute},
	})

	_, aerr := l.Allow("wallet-1", BucketSensitive)
	require.Nil(t, aerr)

	_, aerr = l.Allow("wallet-1", BucketGeneral)
	require.Nil(t, aerr, "general bucket must not be exhausted by sensitive bucket usage")
}

func TestLimiterIdentitiesAreIndependent(t *testing.T) {
	l := NewLimiter(map[Bucket]BucketLimits{BucketSensitive: {Limit: 1, Window: time.Minute}})

	_, aerr := l.Allow("wallet-1", BucketSensitive)
	require.Nil(t, aerr)

	_, aerr = l.Allow("wallet-2", BucketSensitive)
	require.Nil(t, aerr)
}
