package atrest

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/cardanohealth/vault/internal/crypto"
)

const (
	// KEKSaltSize is the size of the per-KEK HKDF salt in bytes.
	KEKSaltSize = 32

	// DomainSeparationInfo is the HKDF info string prefix; the KEK's
	// own ID is appended so every derived KEK is bound to its ID.
	DomainSeparationInfo = "cardanohealth:vault:atrest:kek:v1"

	// DefaultRotationDays is the default KEK rotation period.
	DefaultRotationDays = 90

	// DefaultMaxWraps is the default number of blob seals before
	// rotation, independent of elapsed time.
	DefaultMaxWraps = 20_000_000

	// DefaultGraceDays is how long a retired KEK remains readable so
	// the sweeper has time to rewrap everything still sealed under it.
	DefaultGraceDays = 180
)

// Status is the lifecycle state of one KEK.
type Status string

const (
	StatusActive  Status = "active"
	StatusGrace   Status = "grace"
	StatusRetired Status = "retired"
)

// Metadata describes one versioned KEK. The KEK value itself is never
// stored — it is rederived from the RMK and this metadata on demand.
type Metadata struct {
	ID         string
	Version    int
	Salt       [KEKSaltSize]byte
	RMKVersion int
	CreatedAt  time.Time
	WrapsCount int64
	Status     Status
	RetiredAt  *time.Time
}

// RotationPolicy is the rotation policy for the KEK hierarchy.
type RotationPolicy struct {
	RotationDays int
	MaxWraps     int64
	GraceDays    int
}

// DefaultRotationPolicy matches the teacher's KEK rotation defaults.
func DefaultRotationPolicy() RotationPolicy {
	return RotationPolicy{
		RotationDays: DefaultRotationDays,
		MaxWraps:     DefaultMaxWraps,
		GraceDays:    DefaultGraceDays,
	}
}

// GenerateKEKSalt returns a fresh random per-KEK HKDF salt.
func GenerateKEKSalt() ([KEKSaltSize]byte, error) {
	var salt [KEKSaltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return salt, fmt.Errorf("atrest: failed to generate KEK salt: %w", err)
	}
	return salt, nil
}

// DeriveKEK derives a 32-byte KEK from rmk via HKDF-SHA256, using
// metadata's salt and an info string bound to the KEK's own ID so two
// KEKs never collide even if a salt were ever reused.
func DeriveKEK(rmk [RMKSize]byte, metadata Metadata) ([]byte, error) {
	info := fmt.Sprintf("%s:%s", DomainSeparationInfo, metadata.ID)
	reader := hkdf.New(sha256.New, rmk[:], metadata.Salt[:], []byte(info))

	kek := make([]byte, crypto.CEKSize)
	if _, err := io.ReadFull(reader, kek); err != nil {
		return nil, fmt.Errorf("atrest: failed to derive KEK %s: %w", metadata.ID, err)
	}
	return kek, nil
}
