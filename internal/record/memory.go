package record

import (
	"context"
	"sync"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

// MemoryStore is a plain-map Store used by tests and local development
// that don't need SQL coverage. Per-record mutexes serialize writers;
// readers take a snapshot under the same per-record lock so they never
// observe a partially-applied patch.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  map[string]*entity.Record
	locks map[string]*sync.Mutex
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:  make(map[string]*entity.Record),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) lockFor(recordID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[recordID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[recordID] = l
	}
	return l
}

func (s *MemoryStore) Upsert(_ context.Context, rec entity.Record) *apierr.Error {
	l := s.lockFor(rec.RecordID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.RecordID] = rec.Clone()
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, recordID string) (entity.Record, *apierr.Error) {
	l := s.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[recordID]
	if !ok {
		return entity.Record{}, apierr.New(apierr.NotFound, "record not found")
	}
	return *rec.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, owner string) ([]entity.Record, *apierr.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Record, 0, len(s.rows))
	for _, rec := range s.rows {
		if owner != "" && rec.Owner != owner {
			continue
		}
		out = append(out, *rec.Clone())
	}
	return out, nil
}

func (s *MemoryStore) PatchWrappedKeys(_ context.Context, recordID string, wrappedKeys map[string]entity.WrappedKeyEnvelope, newEpoch int) *apierr.Error {
	l := s.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[recordID]
	if !ok {
		return apierr.New(apierr.NotFound, "record not found")
	}
	patched := wrappedKeys
	rec.WrappedKeys = make(map[string]entity.WrappedKeyEnvelope, len(patched))
	for k, v := range patched {
		rec.WrappedKeys[k] = v
	}
	rec.Epoch = newEpoch
	return nil
}

func (s *MemoryStore) PatchStatus(_ context.Context, recordID string, status entity.Status) *apierr.Error {
	l := s.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[recordID]
	if !ok {
		return apierr.New(apierr.NotFound, "record not found")
	}
	rec.Status = status
	return nil
}

var _ Store = (*MemoryStore)(nil)
