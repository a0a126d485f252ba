package gate

import (
	"sync"
	"time"

	"github.com/cardanohealth/vault/internal/apierr"
)

// Bucket names the three windowed-counter classes a caller can be
// rate-limited under.
type Bucket string

const (
	BucketGeneral   Bucket = "general"
	BucketAuth      Bucket = "auth"
	BucketSensitive Bucket = "sensitive"
)

// BucketLimits configures the request ceiling and window for one bucket.
type BucketLimits struct {
	Limit  int
	Window time.Duration
}

// DefaultBucketLimits matches spec.md §4.8's description: general
// traffic is the most permissive, auth and sensitive are tighter.
func DefaultBucketLimits() map[Bucket]BucketLimits {
	return map[Bucket]BucketLimits{
		BucketGeneral:   {Limit: 120, Window: time.Minute},
		BucketAuth:      {Limit: 30, Window: time.Minute},
		BucketSensitive: {Limit: 10, Window: time.Minute},
	}
}

type windowCounter struct {
	windowStart time.Time
	count       int
}

// Limiter implements windowed-counter rate limiting, keyed by an
// arbitrary caller-supplied identity (remote IP or wallet address)
// crossed with a Bucket.
type Limiter struct {
	mu      sync.Mutex
	limits  map[Bucket]BucketLimits
	windows map[string]windowCounter
	nowFunc func() time.Time
}

// NewLimiter builds a Limiter over limits (falling back to
// DefaultBucketLimits for any bucket not present).
func NewLimiter(limits map[Bucket]BucketLimits) *Limiter {
	merged := DefaultBucketLimits()
	for b, l := range limits {
		merged[b] = l
	}
	return &Limiter{limits: merged, windows: make(map[string]windowCounter), nowFunc: time.Now}
}

// Allow checks whether identity may make one more request in bucket.
// On success it consumes one unit of the window. On failure it
// returns RateLimited with retryAfter set to the remaining window.
func (l *Limiter) Allow(identity string, bucket Bucket) (retryAfter time.Duration, aerr *apierr.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limits, ok := l.limits[bucket]
	if !ok {
		limits = BucketLimits{Limit: 60, Window: time.Minute}
	}

	key := string(bucket) + ":" + identity
	now := l.nowFunc()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.windowStart) >= limits.Window {
		w = windowCounter{windowStart: now, count: 0}
	}

	if w.count >= limits.Limit {
		remaining := limits.Window - now.Sub(w.windowStart)
		l.windows[key] = w
		return remaining, apierr.New(apierr.RateLimited, "rate limit exceeded")
	}

	w.count++
	l.windows[key] = w
	return 0, nil
}
