package objectstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/crypto"
	"github.com/cardanohealth/vault/internal/retry"
)

// Backend is the minimal content-addressed transport the Adapter wraps
// with retries and timeouts. A real deployment implements this against
// IPFS/Pinata; MockBackend implements it in memory.
type Backend interface {
	Put(ctx context.Context, bytes []byte) (cid string, err error)
	Get(ctx context.Context, cid string) (bytes []byte, err error)
	Unpin(ctx context.Context, cid string) error
}

// Adapter is the Object Store Adapter (C2): it retries transport-level
// failures up to Policy.MaxAttempts with a fixed, jittered backoff of
// about Policy.BackoffBaseMs between attempts, and surfaces
// StorageUnavailable once the policy is exhausted.
type Adapter struct {
	backend Backend
	policy  retry.Policy
	logger  *slog.Logger
}

// New builds an Adapter over backend using policy for retries.
func New(backend Backend, policy retry.Policy, logger *slog.Logger) *Adapter {
	return &Adapter{backend: backend, policy: policy, logger: logger}
}

// Upload uploads bytes and returns the resulting CID, retrying transient
// backend failures.
func (a *Adapter) Upload(ctx context.Context, bytes []byte) (string, *apierr.Error) {
	retrier := retry.NewTypedRetrier[string](retry.NewPolicyRetrier(a.policy))
	cid, err := retrier.RetryWithBackoff(ctx, func(attemptCtx context.Context) (string, error) {
		attemptCtx, cancel := withPerAttemptTimeout(attemptCtx, a.policy)
		defer cancel()
		return a.backend.Put(attemptCtx, bytes)
	})
	if err != nil {
		return "", apierr.Wrap(apierr.StorageUnavailable, "upload failed after retries", err)
	}
	return cid, nil
}

// Download fetches the bytes behind cid, retrying transient backend
// failures.
func (a *Adapter) Download(ctx context.Context, cid string) ([]byte, *apierr.Error) {
	retrier := retry.NewTypedRetrier[[]byte](retry.NewPolicyRetrier(a.policy))
	bytes, err := retrier.RetryWithBackoff(ctx, func(attemptCtx context.Context) ([]byte, error) {
		attemptCtx, cancel := withPerAttemptTimeout(attemptCtx, a.policy)
		defer cancel()
		return a.backend.Get(attemptCtx, cid)
	})
	if err != nil {
		if errors.Is(err, ErrMockNoPayload) {
			return nil, apierr.Wrap(apierr.NotFound, "mock backend has no payload for cid", err)
		}
		return nil, apierr.Wrap(apierr.StorageUnavailable, "download failed after retries", err)
	}
	return bytes, nil
}

// Unpin is a separate administrative operation with idempotent
// semantics: unpinning an already-unpinned CID is not an error.
func (a *Adapter) Unpin(ctx context.Context, cid string) *apierr.Error {
	if err := a.backend.Unpin(ctx, cid); err != nil {
		if errors.Is(err, ErrAlreadyUnpinned) {
			return nil
		}
		return apierr.Wrap(apierr.StorageUnavailable, "unpin failed", err)
	}
	return nil
}

// contentAddress is exposed so mock backends and tests can compute the
// same deterministic CID the spec requires of mock mode.
func contentAddress(bytes []byte) string {
	return crypto.Sha256Hex(bytes)
}

// withPerAttemptTimeout derives a bounded context for a single attempt.
// A zero PerAttemptTimeout leaves ctx unbounded.
func withPerAttemptTimeout(ctx context.Context, policy retry.Policy) (context.Context, context.CancelFunc) {
	if policy.PerAttemptTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, policy.PerAttemptTimeout)
}
