package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"

	"github.com/cardanohealth/vault/internal/apierr"
)

// ParseRSAPublicKeyPEM parses a PKIX-encoded RSA public key from PEM, the
// legacy wrap path's key material format.
func ParseRSAPublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, *apierr.Error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, apierr.Crypto(apierr.Malformed, "invalid PEM block")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "failed to parse RSA public key", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, apierr.Crypto(apierr.Malformed, "PEM does not contain an RSA public key")
	}
	return rsaPub, nil
}

// WrapRSA encrypts cek under recipientPubPEM using RSA-OAEP with SHA-256
// as both mask-generation hash and digest. This is the legacy wrap path;
// the engine must accept records that mix it with X25519 wraps but must
// never silently downgrade a recipient who has an X25519 key to RSA.
func WrapRSA(cek, recipientPubPEM []byte) ([]byte, *apierr.Error) {
	if len(cek) != CEKSize {
		return nil, apierr.Crypto(apierr.KeyLength, "CEK must be 32 bytes")
	}
	pub, aerr := ParseRSAPublicKeyPEM(recipientPubPEM)
	if aerr != nil {
		return nil, aerr
	}
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, cek, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "RSA-OAEP encryption failed", err)
	}
	return ct, nil
}

// UnwrapRSA decrypts an RSA-OAEP-SHA256 wrapped CEK under the recipient's
// private key.
func UnwrapRSA(wrapped []byte, recipientPriv *rsa.PrivateKey) ([]byte, *apierr.Error) {
	if recipientPriv == nil {
		return nil, apierr.Crypto(apierr.KeyLength, "nil RSA private key")
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, recipientPriv, wrapped, nil)
	if err != nil {
		return nil, apierr.Crypto(apierr.AuthFailed, "RSA-OAEP decryption failed")
	}
	if len(pt) != CEKSize {
		return nil, apierr.Crypto(apierr.Malformed, "unwrapped CEK has unexpected length")
	}
	return pt, nil
}
