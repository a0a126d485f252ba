package custody

import (
	"sync"
	"time"

	"github.com/cardanohealth/vault/internal/apierr"
)

// DefaultTTL is the default time a parked CEK survives before the
// sweeper evicts it.
const DefaultTTL = 300 * time.Second

// entry is a single parked CEK plus its expiry.
type entry struct {
	cek       []byte
	expiresAt time.Time
}

// Store is a TTL-bound, in-memory custody map keyed by recordID. It is
// deliberately not an LRU or size-bounded cache: CEKs are expected to be
// claimed (Get then Evict) well within TTL, and the sweeper's only job is
// to guarantee forgotten ones don't linger forever.
type Store struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]entry
}

// New constructs a Store with the given TTL. A non-positive ttl falls
// back to DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, m: make(map[string]entry)}
}

// Put parks cek under recordID, replacing any CEK already parked there.
// Replacement is intentional: a re-ingest or a rotation supersedes
// whatever was previously waiting to be wrapped.
func (s *Store) Put(recordID string, cek []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[recordID] = entry{
		cek:       append([]byte(nil), cek...),
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Get returns the CEK parked under recordID. It does not remove the
// entry — callers that are done with the CEK must call Evict
// explicitly, so a failed wrap can retry against the same parked key.
func (s *Store) Get(recordID string) ([]byte, *apierr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[recordID]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.m, recordID)
		return nil, apierr.New(apierr.NotFound, "no CEK parked for record")
	}
	return append([]byte(nil), e.cek...), nil
}

// Evict removes any CEK parked under recordID. It is idempotent:
// evicting an already-absent entry is not an error.
func (s *Store) Evict(recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, recordID)
}

// sweepExpired removes all entries past their TTL and reports how many
// were removed, for sweeper logging.
func (s *Store) sweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.m {
		if now.After(e.expiresAt) {
			delete(s.m, id)
			removed++
		}
	}
	return removed
}
