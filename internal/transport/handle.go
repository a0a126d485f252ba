package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/gate"
	"github.com/cardanohealth/vault/internal/log"
)

// Handler is one RPC operation's business logic. It runs after rate
// limiting and gets a per-request trail ID for correlating its own
// logs with whatever the lifecycle engine records in the audit
// journal for the same request.
type Handler func(w http.ResponseWriter, r *http.Request, trailID string) *apierr.Error

// HandleRoute wraps h with the teacher's enter/exit request-logging
// idiom, generalized to the vault's own audit model: a trail ID is
// minted per request (github.com/google/uuid, replacing the teacher's
// crypto.ID()) and logged on entry and exit through internal/log,
// while the domain-specific ACCESS_GRANTED/CEK_WRAPPED/... audit
// events that matter to an operator are emitted by
// internal/lifecycle.Engine itself against the closed journal.Kind
// enum — HandleRoute only ever sees an *apierr.Error, never a kind,
// so it cannot and does not try to journal domain events directly.
//
// limiter may be nil to disable rate limiting (used by tests).
func HandleRoute(limiter *gate.Limiter, bucket gate.Bucket, h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trailID := uuid.NewString()
		start := time.Now()

		logger := log.Log().With("trailId", trailID, "path", r.URL.Path, "method", r.Method)
		logger.Info("request enter")

		if limiter != nil {
			identity := callerIdentity(r)
			if retryAfter, aerr := limiter.Allow(identity, bucket); aerr != nil {
				w.Header().Set("Retry-After", retryAfter.Truncate(time.Second).String())
				RespondError(aerr, w)
				logger.Warn("request exit", "result", "rate_limited", "duration", time.Since(start))
				return
			}
		}

		aerr := h(w, r, trailID)

		result := "success"
		if aerr != nil {
			result = string(aerr.Code)
		}
		logger.Info("request exit", "result", result, "duration", time.Since(start))
	}
}

// callerIdentity picks the rate-limiter key for a request: the remote
// address, since per-wallet identity isn't known until the handler has
// parsed and verified the body's AuthProof.
func callerIdentity(r *http.Request) string {
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
