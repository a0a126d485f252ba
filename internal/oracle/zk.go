package oracle

import (
	"context"
	"sync"

	"github.com/cardanohealth/vault/internal/entity"
)

// ProofRequester asks the client for a membership proof of actorID
// against the commitment at recordID. Per SPEC_FULL.md §10 (resolving
// spec.md's open question on proof generation locus), the oracle never
// generates proofs itself — it only verifies what the client supplies.
type ProofRequester interface {
	RequestProof(ctx context.Context, recordID, actorID string, commitment []byte) (proof []byte, err error)
}

// ProofVerifier checks a supplied proof against a commitment without
// revealing non-queried members of the committed set.
type ProofVerifier interface {
	Verify(commitment, proof []byte, actorID string) (bool, error)
}

// ZKSource answers using a commitment registry plus a pluggable
// requester/verifier pair. It is disabled (returns Fallthrough
// unconditionally) until both a requester and verifier are configured,
// matching the "ZK disabled" oracle-tiering test scenario.
type ZKSource struct {
	mu          sync.RWMutex
	commitments map[string][]byte
	requester   ProofRequester
	verifier    ProofVerifier
}

// NewZKSource builds a ZKSource with no commitments and no wired
// requester/verifier — i.e. disabled.
func NewZKSource() *ZKSource {
	return &ZKSource{commitments: make(map[string][]byte)}
}

// SetCommitment registers the commitment bytes for recordID.
func (z *ZKSource) SetCommitment(recordID string, commitment []byte) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.commitments[recordID] = commitment
}

// Enable wires the requester/verifier pair, turning the source on.
func (z *ZKSource) Enable(requester ProofRequester, verifier ProofVerifier) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.requester = requester
	z.verifier = verifier
}

func (z *ZKSource) Check(ctx context.Context, recordID, actorID string) (Result, error) {
	z.mu.RLock()
	requester, verifier := z.requester, z.verifier
	commitment, ok := z.commitments[recordID]
	z.mu.RUnlock()

	if requester == nil || verifier == nil || !ok {
		return Result{Decision: Fallthrough, Source: entity.SourceZK}, nil
	}

	proof, err := requester.RequestProof(ctx, recordID, actorID, commitment)
	if err != nil {
		return Result{}, err
	}

	granted, err := verifier.Verify(commitment, proof, actorID)
	if err != nil {
		return Result{}, err
	}
	if !granted {
		return Result{Decision: Fallthrough, Source: entity.SourceZK}, nil
	}
	return Result{Decision: Granted, Source: entity.SourceZK, Evidence: proof}, nil
}
