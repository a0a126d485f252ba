package gate

import (
	"crypto/ed25519"
	"encoding/json"
	"sort"

	"github.com/cardanohealth/vault/internal/apierr"
)

// SignaturePayload is the canonical JSON shape a wallet signs. Fields
// are ordered and marshaled deterministically via CanonicalBytes so
// the same logical payload always produces the same bytes to sign.
type SignaturePayload struct {
	Operation string         `json:"operation"`
	RecordID  string         `json:"recordId"`
	Timestamp int64          `json:"timestamp"`
	Network   string         `json:"network"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// CanonicalBytes renders p deterministically: struct fields marshal in
// declared order already, but Extra is a map, so its keys are sorted
// before encoding to keep the signed bytes reproducible.
func (p SignaturePayload) CanonicalBytes() ([]byte, error) {
	type alias SignaturePayload
	if p.Extra == nil {
		return json.Marshal(alias(p))
	}
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]any, len(keys))
	for _, k := range keys {
		ordered[k] = p.Extra[k]
	}
	a := alias(p)
	a.Extra = ordered
	return json.Marshal(a)
}

// SignatureScheme names the cryptographic family a caller claims a
// signature was produced with.
type SignatureScheme string

const (
	SchemeEd25519 SignatureScheme = "ed25519"
	SchemeHMAC    SignatureScheme = "hmac-sha256"
)

// VerifyWalletSignature checks sig against payload using the wallet's
// Ed25519 public key. In production mode (allowSymmetric=false, the
// operational default) any scheme other than Ed25519 — in particular
// an HMAC-style symmetric signature — is rejected outright as
// Unauthorized, per spec.md §4.8, regardless of whether the bytes
// happen to verify against anything.
func VerifyWalletSignature(scheme SignatureScheme, payload SignaturePayload, sig, walletPublicKey []byte, allowSymmetric bool) *apierr.Error {
	if scheme != SchemeEd25519 {
		if scheme == SchemeHMAC && !allowSymmetric {
			return apierr.New(apierr.Unauthorized, "symmetric signatures are not accepted in production mode")
		}
		return apierr.New(apierr.Unauthorized, "unsupported signature scheme")
	}
	if len(walletPublicKey) != ed25519.PublicKeySize {
		return apierr.New(apierr.Unauthorized, "malformed wallet public key")
	}

	msg, err := payload.CanonicalBytes()
	if err != nil {
		return apierr.Wrap(apierr.Internal, "gate: failed to canonicalize signature payload", err)
	}

	if !ed25519.Verify(ed25519.PublicKey(walletPublicKey), msg, sig) {
		return apierr.New(apierr.Unauthorized, "wallet signature verification failed")
	}
	return nil
}
