package atrest

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cloudflare/circl/group"
	shamir "github.com/cloudflare/circl/secretsharing"

	"github.com/cardanohealth/vault/internal/crypto"
)

// RMKSize is the length in bytes of the Root Master Key.
const RMKSize = crypto.CEKSize

// GenerateRMK returns a fresh random Root Master Key.
func GenerateRMK() ([RMKSize]byte, error) {
	var rmk [RMKSize]byte
	if _, err := io.ReadFull(rand.Reader, rmk[:]); err != nil {
		return rmk, fmt.Errorf("atrest: failed to generate RMK: %w", err)
	}
	return rmk, nil
}

// shamirGroup is the curve the RMK is secret-shared over. P256 scalars
// are 32 bytes, matching RMKSize exactly.
var shamirGroup = group.P256

// SplitRMK splits rmk into shares shares, any threshold of which
// reconstruct it, using circl's Shamir secret sharing over P256.
func SplitRMK(rmk [RMKSize]byte, shares, threshold uint) ([]shamir.Share, error) {
	if threshold < 1 || threshold > shares {
		return nil, fmt.Errorf("atrest: threshold must be in [1, shares]")
	}

	secret := shamirGroup.NewScalar()
	if err := secret.UnmarshalBinary(rmk[:]); err != nil {
		return nil, fmt.Errorf("atrest: failed to load RMK into scalar: %w", err)
	}

	ss := shamir.New(rand.Reader, threshold-1, secret)
	return ss.Share(shares), nil
}

// RecoverRMK reconstructs the RMK from at least threshold shares.
func RecoverRMK(threshold uint, shares []shamir.Share) ([RMKSize]byte, error) {
	var rmk [RMKSize]byte

	if uint(len(shares)) < threshold {
		return rmk, fmt.Errorf("atrest: need at least %d shares, got %d", threshold, len(shares))
	}

	secret, err := shamir.Recover(threshold-1, shares[:threshold])
	if err != nil {
		return rmk, fmt.Errorf("atrest: failed to recover RMK: %w", err)
	}

	raw, err := secret.MarshalBinary()
	if err != nil {
		return rmk, fmt.Errorf("atrest: failed to marshal recovered RMK: %w", err)
	}
	if len(raw) != RMKSize {
		return rmk, fmt.Errorf("atrest: recovered RMK has unexpected length %d", len(raw))
	}
	copy(rmk[:], raw)
	return rmk, nil
}
