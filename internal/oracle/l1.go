package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/cardanohealth/vault/internal/entity"
)

// L1Source answers from the set of unspent outputs at the validator
// script address, each carrying a fixed-field inline datum. It is
// queried when the L2 replica has no opinion about the record.
type L1Source struct {
	mu      sync.RWMutex
	utxos   []entity.ValidatorDatum
	nowFunc func() time.Time
}

// NewL1Source builds an L1Source over an initially-empty UTxO set.
func NewL1Source() *L1Source {
	return &L1Source{nowFunc: time.Now}
}

// SetUTXOs replaces the full set of script UTxOs the source scans.
func (l *L1Source) SetUTXOs(utxos []entity.ValidatorDatum) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.utxos = utxos
}

func (l *L1Source) Check(_ context.Context, recordID, actorID string) (Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.nowFunc()
	for _, datum := range l.utxos {
		if string(datum.RecordID) != recordID {
			continue
		}
		if datum.ExpiresAt != 0 && now.Unix() >= datum.ExpiresAt {
			continue
		}
		for _, actor := range datum.PermittedActors {
			if string(actor) == actorID {
				return Result{Decision: Granted, Source: entity.SourceL1}, nil
			}
		}
	}
	return Result{Decision: Fallthrough, Source: entity.SourceL1}, nil
}
