package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Hex returns the 64-character lowercase hex SHA-256 digest of b.
func Sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Sha256HexString is a convenience wrapper over Sha256Hex for string
// input, used for CID hashing where the CID is already a string.
func Sha256HexString(s string) string {
	return Sha256Hex([]byte(s))
}
