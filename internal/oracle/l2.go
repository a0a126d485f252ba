package oracle

import (
	"context"
	"sync"

	"github.com/cardanohealth/vault/internal/entity"
)

// L2Source answers from the latest accepted snapshot of the L2
// replica. It is the fast path: most checks never need to leave this
// tier.
type L2Source struct {
	mu       sync.RWMutex
	snapshot *entity.Snapshot
}

// NewL2Source builds an L2Source with no snapshot yet accepted.
func NewL2Source() *L2Source {
	return &L2Source{}
}

// Accept replaces the current snapshot. Snapshots are immutable once
// accepted; Accept only ever moves state forward to a newer one.
func (l *L2Source) Accept(snap entity.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = &snap
}

// Clear drops the current snapshot, simulating "no L2 replica has this
// record" for tests that exercise fallthrough behavior.
func (l *L2Source) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = nil
}

func (l *L2Source) Check(_ context.Context, recordID, actorID string) (Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.snapshot == nil {
		return Result{Decision: Fallthrough, Source: entity.SourceL2}, nil
	}
	entry, ok := l.snapshot.Records[recordID]
	if !ok {
		return Result{Decision: Fallthrough, Source: entity.SourceL2}, nil
	}
	for _, a := range entry.PermittedActors {
		if a == actorID {
			return Result{Decision: Granted, Source: entity.SourceL2}, nil
		}
	}
	return Result{Decision: Denied, Source: entity.SourceL2}, nil
}
