package record

import (
	"context"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

// Store is the Record Store interface the lifecycle engine consumes.
// Implementations must serialize writers per recordID (so two
// concurrent wraps of the same record never interleave) and return
// readers a deep-enough copy that callers cannot mutate shared state.
type Store interface {
	// Upsert inserts or replaces rec entirely.
	Upsert(ctx context.Context, rec entity.Record) *apierr.Error

	// GetByID returns a snapshot copy of the record, or NotFound.
	GetByID(ctx context.Context, recordID string) (entity.Record, *apierr.Error)

	// List returns snapshot copies of every record, optionally filtered
	// to a single owner when owner is non-empty.
	List(ctx context.Context, owner string) ([]entity.Record, *apierr.Error)

	// PatchWrappedKeys atomically replaces the WrappedKeys map and bumps
	// Epoch under the record's own lock, without touching any other
	// field — this is the commit point for wrap. Revoke-and-rotate
	// commits with a single Upsert instead.
	PatchWrappedKeys(ctx context.Context, recordID string, wrappedKeys map[string]entity.WrappedKeyEnvelope, newEpoch int) *apierr.Error

	// PatchStatus atomically replaces Status under the record's own lock.
	PatchStatus(ctx context.Context, recordID string, status entity.Status) *apierr.Error
}
