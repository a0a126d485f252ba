package oracle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

// DefaultCacheTTL matches spec.md §4.5's "~1 hour" per-source response
// cache.
const DefaultCacheTTL = time.Hour

type cacheKey struct {
	recordID string
	actorID  string
}

type cacheEntry struct {
	granted   bool
	source    entity.Source
	evidence  []byte
	expiresAt time.Time
}

// Oracle runs the fixed L2 → L1 → ZK → Chain waterfall described in
// spec.md §4.5, caching definitive answers per (recordId, actorId).
type Oracle struct {
	l2    Source
	l1    Source
	zk    Source
	chain Source

	cacheTTL time.Duration
	mu       sync.Mutex
	cache    map[cacheKey]cacheEntry

	logger *slog.Logger
}

// New builds an Oracle over the four tiers in their fixed order.
func New(l2, l1, zk, chain Source, cacheTTL time.Duration, logger *slog.Logger) *Oracle {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{
		l2: l2, l1: l1, zk: zk, chain: chain,
		cacheTTL: cacheTTL,
		cache:    make(map[cacheKey]cacheEntry),
		logger:   logger,
	}
}

// Check answers (granted, source, evidence) for actorID against
// recordID, consulting sources in fixed order and short-circuiting on
// the first definitive answer (Granted or Denied). A source-level
// error is logged as a non-fatal warning and the next tier is tried;
// only exhaustion of every tier surfaces OracleUnavailable.
func (o *Oracle) Check(ctx context.Context, recordID, actorID string) (bool, entity.Source, []byte, *apierr.Error) {
	key := cacheKey{recordID: recordID, actorID: actorID}
	if entry, ok := o.lookupCache(key); ok {
		return entry.granted, entry.source, entry.evidence, nil
	}

	tiers := []Source{o.l2, o.l1, o.zk, o.chain}
	for _, tier := range tiers {
		if tier == nil {
			continue
		}
		result, err := tier.Check(ctx, recordID, actorID)
		if err != nil {
			o.logger.Warn("oracle source failed, advancing to next tier",
				"record_id", recordID, "actor_id", actorID, "err", err)
			continue
		}
		switch result.Decision {
		case Granted:
			o.storeCache(key, true, result.Source, result.Evidence)
			return true, result.Source, result.Evidence, nil
		case Denied:
			// Tie-break: a definitive denial from this tier is
			// authoritative against its own universe and stops the
			// chain — later, less-current tiers are not consulted.
			o.storeCache(key, false, result.Source, nil)
			return false, result.Source, nil, nil
		case Fallthrough:
			continue
		}
	}

	return false, "", nil, apierr.New(apierr.OracleUnavailable, "all permission oracle sources exhausted")
}

// Evict removes any cached answer for (recordId, actorId). The
// lifecycle engine calls this on revoke so a stale Granted never
// survives past the epoch that invalidated it.
func (o *Oracle) Evict(recordID, actorID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cache, cacheKey{recordID: recordID, actorID: actorID})
}

// EvictRecord removes every cached answer for recordID, regardless of
// actor — used by revoke-and-rotate, which invalidates every actor's
// standing answer at once.
func (o *Oracle) EvictRecord(recordID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key := range o.cache {
		if key.recordID == recordID {
			delete(o.cache, key)
		}
	}
}

func (o *Oracle) lookupCache(key cacheKey) (cacheEntry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry, ok := o.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (o *Oracle) storeCache(key cacheKey, granted bool, source entity.Source, evidence []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache[key] = cacheEntry{
		granted:   granted,
		source:    source,
		evidence:  evidence,
		expiresAt: time.Now().Add(o.cacheTTL),
	}
}
