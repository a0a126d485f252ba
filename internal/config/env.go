package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Version is the vault daemon's version string, surfaced in logs and
// the HTTP API's status endpoint.
const Version = "0.1.0"

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// HTTPPort returns the port cmd/vaultd's RPC transport listens on.
// Read from VAULT_HTTP_PORT, default ":8443".
func HTTPPort() string {
	return getenv("VAULT_HTTP_PORT", ":8443")
}

// KeeperPort returns the port cmd/keeperd's mTLS custody endpoint
// listens on. Read from VAULT_KEEPER_PORT, default ":8444".
func KeeperPort() string {
	return getenv("VAULT_KEEPER_PORT", ":8444")
}

// KeeperURL returns the base URL a custody.RemoteStore client dials.
// cmd/vaultd uses the in-process custody store and does not read it.
// Read from VAULT_KEEPER_URL.
func KeeperURL() string {
	return getenv("VAULT_KEEPER_URL", "https://localhost:8444")
}

// ObjectStoreMode selects the object-store backend. "mock" (default)
// uses the in-memory content-addressed backend; any other value makes
// cmd/vaultd use atrest.SealedBackend, which seals each blob under the
// at-rest KEK hierarchy. Read from VAULT_OBJECTSTORE_MODE.
func ObjectStoreMode() string {
	return getenv("VAULT_OBJECTSTORE_MODE", "mock")
}

// RecordStoreDSN returns the sqlite DSN for the record store. An empty
// value (the default) tells cmd/vaultd to use the in-memory store
// instead. Read from VAULT_RECORD_STORE_DSN.
func RecordStoreDSN() string {
	return getenv("VAULT_RECORD_STORE_DSN", "")
}

// CustodyTTL is how long an unclaimed CEK survives in custody before
// the sweeper evicts it. Read from VAULT_CUSTODY_TTL (a Go duration
// string, e.g. "5m"), default 300s.
func CustodyTTL() time.Duration {
	return getenvDuration("VAULT_CUSTODY_TTL", 300*time.Second)
}

// OracleCacheTTL is how long the permission oracle caches a definitive
// per-(record, actor) answer. Read from VAULT_ORACLE_CACHE_TTL,
// default 1h.
func OracleCacheTTL() time.Duration {
	return getenvDuration("VAULT_ORACLE_CACHE_TTL", time.Hour)
}

// JournalRingCapacity bounds the in-memory ring of recent audit events
// the journal keeps for the status/recent-activity API. Read from
// VAULT_JOURNAL_RING_CAPACITY, default 1000.
func JournalRingCapacity() int {
	return getenvInt("VAULT_JOURNAL_RING_CAPACITY", 1000)
}

// ShamirShares returns the total number of RMK Shamir shares for
// atrest.SplitRMK; cmd/vaultd does not split its RMK and does not read
// it. Read from VAULT_SHAMIR_SHARES, default 5.
func ShamirShares() uint {
	return uint(getenvInt("VAULT_SHAMIR_SHARES", 5))
}

// ShamirThreshold returns the minimum number of shares required to
// reconstruct the RMK. Read from VAULT_SHAMIR_THRESHOLD, default 3.
func ShamirThreshold() uint {
	return uint(getenvInt("VAULT_SHAMIR_THRESHOLD", 3))
}

// KEKRotationDays, KEKMaxWraps and KEKGraceDays configure the at-rest
// KEK rotation policy (see internal/atrest). Read from
// VAULT_KEK_ROTATION_DAYS / VAULT_KEK_MAX_WRAPS / VAULT_KEK_GRACE_DAYS.
func KEKRotationDays() int { return getenvInt("VAULT_KEK_ROTATION_DAYS", 90) }
func KEKMaxWraps() int64   { return int64(getenvInt("VAULT_KEK_MAX_WRAPS", 20_000_000)) }
func KEKGraceDays() int    { return getenvInt("VAULT_KEK_GRACE_DAYS", 180) }

// SessionTokenSecret is the HMAC signing secret for the login
// endpoint's short-lived JWT session tokens (distinct from the
// per-request wallet signatures internal/gate verifies). Read from
// VAULT_SESSION_TOKEN_SECRET; with an empty value cmd/vaultd logs a
// warning and starts with the login endpoint and session checks off.
func SessionTokenSecret() string {
	return getenv("VAULT_SESSION_TOKEN_SECRET", "")
}

// SessionTokenTTL is how long an issued session token remains valid.
// Read from VAULT_SESSION_TOKEN_TTL, default 15m.
func SessionTokenTTL() time.Duration {
	return getenvDuration("VAULT_SESSION_TOKEN_TTL", 15*time.Minute)
}

// RateLimitEnabled toggles internal/gate's stacked rate limiter. Read
// from VAULT_RATE_LIMIT_ENABLED, default true.
func RateLimitEnabled() bool {
	return getenvBool("VAULT_RATE_LIMIT_ENABLED", true)
}

// LogLevel returns the logging level for every vault component. Read
// from VAULT_LOG_LEVEL (DEBUG/INFO/WARN/ERROR, case-insensitive),
// default WARN.
func LogLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("VAULT_LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	case "WARN":
		return slog.LevelWarn
	default:
		return slog.LevelWarn
	}
}
