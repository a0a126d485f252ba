// Package retry provides a bounded, typed retry-with-backoff policy used
// by the object-store adapter and, optionally, by oracle source calls.
//
// Per SPEC_FULL.md §9's re-architecture guidance, callback-driven ad hoc
// retries are replaced with a plain configuration struct
// {MaxAttempts, PerAttemptTimeout, BackoffBaseMs} plus a generic runner.
package retry

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a bounded retry configuration, expressed as plain data so
// callers can construct it from environment variables without touching
// the retrier implementation.
type Policy struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
	BackoffBaseMs     int
}

// DefaultPolicy is the object-store adapter's policy: up to 3 attempts
// total, about 200ms between attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		PerAttemptTimeout: 10 * time.Second,
		BackoffBaseMs:     200,
	}
}

func (p Policy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(p.BackoffBaseMs) * time.Millisecond
	// Multiplier 1.0 keeps every wait at BackoffBaseMs, jittered by the
	// default ±50% randomization; the wait does not grow with the
	// attempt index.
	b.Multiplier = 1.0
	b.MaxElapsedTime = 0
	attempts := p.MaxAttempts - 1
	if attempts < 0 {
		attempts = 0
	}
	return backoff.WithMaxRetries(b, uint64(attempts))
}

// Retrier handles retry operations with backoff.
type Retrier interface {
	// RetryWithBackoff executes an operation with backoff.
	RetryWithBackoff(ctx context.Context, op func() error) error
}

// TypedRetrier provides type-safe retry operations over a base Retrier.
type TypedRetrier[T any] struct {
	retrier Retrier
}

// NewTypedRetrier creates a new TypedRetrier with the given base Retrier.
func NewTypedRetrier[T any](r Retrier) *TypedRetrier[T] {
	return &TypedRetrier[T]{retrier: r}
}

// RetryWithBackoff executes a typed operation with backoff.
func (r *TypedRetrier[T]) RetryWithBackoff(
	ctx context.Context,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var result T
	err := r.retrier.RetryWithBackoff(ctx, func() error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}

// PolicyRetrier implements Retrier using the fixed, jittered backoff
// described by a Policy. PerAttemptTimeout is left to the wrapped
// operation (see RetryWithBackoff).
type PolicyRetrier struct {
	policy Policy
}

// NewPolicyRetrier creates a Retrier bounded by policy.
func NewPolicyRetrier(policy Policy) *PolicyRetrier {
	return &PolicyRetrier{policy: policy}
}

// RetryWithBackoff implements the Retrier interface. The operation
// closure is responsible for honoring PerAttemptTimeout itself (it knows
// how to derive a bounded context from the ambient ctx); PolicyRetrier
// only governs attempt count and spacing.
func (r *PolicyRetrier) RetryWithBackoff(
	ctx context.Context,
	operation func() error,
) error {
	b := r.policy.newBackOff()
	totalDuration := time.Duration(0)
	attempt := 0

	return backoff.RetryNotify(
		func() error {
			attempt++
			return operation()
		},
		backoff.WithContext(b, ctx),
		func(err error, duration time.Duration) {
			totalDuration += duration
			log.Printf("retry: attempt %d failed: %v (elapsed %v, total %v)",
				attempt, err, duration, totalDuration)
		},
	)
}
