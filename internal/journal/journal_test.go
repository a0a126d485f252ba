package journal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := NewEvent("req-1", Kind("NOT_A_REAL_KIND"), time.Now())
	require.Error(t, err)
}

func TestEventBuildersChain(t *testing.T) {
	ev, err := NewEvent("req-1", KindAccessDenied, time.Now())
	require.NoError(t, err)
	ev = ev.WithRecord("rec-1").WithActor("actor-4").WithSource("L2").WithResult(ResultError).WithMarker("tamper")

	require.Equal(t, "rec-1", ev.RecordID)
	require.Equal(t, "actor-4", ev.ActorID)
	require.Equal(t, "L2", ev.Source)
	require.Equal(t, ResultError, ev.Result)
	require.Equal(t, "tamper", ev.Marker)
}

func TestJournalRecordWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	j := New(logger, 10)

	ev, err := NewEvent("req-1", KindFileUploaded, time.Now())
	require.NoError(t, err)
	ev = ev.WithRecord("rec-1")
	j.Record(ev)

	require.Contains(t, buf.String(), "FILE_UPLOADED")
	require.Contains(t, buf.String(), "rec-1")
}

func TestJournalRecentRingIsBounded(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	j := New(logger, 2)

	for i := 0; i < 5; i++ {
		ev, err := NewEvent("req-1", KindPermissionCheck, time.Now())
		require.NoError(t, err)
		j.Record(ev)
	}

	recent := j.Recent()
	require.Len(t, recent, 2)
}

// TestAuditNonLeakage is the property test spec.md §8 asks for: no
// marshaled event payload may contain anything that looks like a CEK,
// plaintext, or private key, because the Event type itself has no
// field capable of carrying one.
func TestAuditNonLeakage(t *testing.T) {
	sensitiveSubstrings := []string{"BEGIN RSA PRIVATE KEY", "cek:", "plaintext:"}

	kinds := []Kind{
		KindAccessGranted, KindAccessDenied, KindCEKWrapped, KindCEKUnwrapped,
		KindCEKRotated, KindSignatureVerificationFailed, KindRateLimitExceeded,
		KindActorRegistered, KindActorDeactivated, KindFileUploaded,
		KindPermissionCheck, KindRevocation,
	}

	for _, k := range kinds {
		ev, err := NewEvent("req-1", k, time.Now())
		require.NoError(t, err)
		ev = ev.WithRecord("rec-1").WithActor("actor-1").WithMethod("X25519").
			WithResult(ResultSuccess).WithMarker("tamper").WithSource("L2")

		body, err := json.Marshal(ev)
		require.NoError(t, err)

		for _, s := range sensitiveSubstrings {
			require.False(t, strings.Contains(string(body), s),
				"event of kind %s leaked sensitive substring %q", k, s)
		}
	}
}
