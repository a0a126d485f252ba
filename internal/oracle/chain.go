package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/cardanohealth/vault/internal/crypto"
	"github.com/cardanohealth/vault/internal/entity"
)

// ChainSource is the fallback-of-last-resort: it scans transaction
// metadata payloads published under the application's fixed label.
// Unlike L1 (and like L2), a record present in the scan with the actor
// absent is a definitive Denied, matching spec.md §4.5's chain-scan wording
// ("absence returns granted=false").
type ChainSource struct {
	mu       sync.RWMutex
	payloads map[string]entity.ChainMetadataPayload
	nowFunc  func() time.Time
}

// NewChainSource builds a ChainSource over an initially-empty payload set.
func NewChainSource() *ChainSource {
	return &ChainSource{payloads: make(map[string]entity.ChainMetadataPayload), nowFunc: time.Now}
}

// Publish registers (or replaces) the metadata payload found for a
// record in the most recent chain scan.
func (c *ChainSource) Publish(payload entity.ChainMetadataPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads[payload.RecordID] = payload
}

func (c *ChainSource) Check(_ context.Context, recordID, actorID string) (Result, error) {
	c.mu.RLock()
	payload, ok := c.payloads[recordID]
	c.mu.RUnlock()

	if !ok {
		return Result{Decision: Fallthrough, Source: entity.SourceChain}, nil
	}
	if payload.ExpiresAt != 0 && c.nowFunc().Unix() >= payload.ExpiresAt {
		return Result{Decision: Fallthrough, Source: entity.SourceChain}, nil
	}
	for _, a := range payload.PermittedActors {
		if a == actorID {
			return Result{Decision: Granted, Source: entity.SourceChain}, nil
		}
	}
	return Result{Decision: Denied, Source: entity.SourceChain}, nil
}

// VerifyContentBinding checks that a chain-scan payload's advertised
// cidHash actually binds to cid, per spec.md §4.5's chain-scan
// validation step. Callers that hold the record's real CID should run
// this before trusting a Granted result sourced from chain scan.
func VerifyContentBinding(payload entity.ChainMetadataPayload, cid string) bool {
	return crypto.Sha256Hex([]byte(cid)) == payload.CIDHash
}
