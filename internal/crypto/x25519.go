package crypto

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"crypto/sha256"

	"github.com/cardanohealth/vault/internal/apierr"
)

// KDFInfo is part of the public wire format: changing it is a breaking
// change, since it is baked into every previously-issued X25519 wrap.
const KDFInfo = "cardano-healthcare-vault-kek-v1"

// GenerateX25519KeyPair returns a fresh ephemeral X25519 key pair.
func GenerateX25519KeyPair() (priv, pub []byte, aerr *apierr.Error) {
	priv = make([]byte, curve25519.ScalarSize)
	if _, err := io.ReadFull(rand.Reader, priv); err != nil {
		return nil, nil, apierr.Wrap(apierr.Internal, "failed to generate ephemeral key", err)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.CryptoFailed, "failed to compute public key", err)
	}
	return priv, pub, nil
}

func deriveKEK(sharedSecret []byte) ([]byte, *apierr.Error) {
	reader := hkdf.New(sha256.New, sharedSecret, nil, []byte(KDFInfo))
	kek := make([]byte, CEKSize)
	if _, err := io.ReadFull(reader, kek); err != nil {
		return nil, apierr.Crypto(apierr.KdfFailed, "HKDF expansion failed")
	}
	return kek, nil
}

// WrapX25519 generates an ephemeral X25519 key pair, performs ECDH with
// recipientPub, derives a 32-byte KEK via HKDF-SHA256 (empty salt, fixed
// info string), and AES-256-GCM-wraps cek under that KEK with a fresh
// 12-byte nonce. It returns IV||AuthTag||CEK_ct and the ephemeral public
// key. There is no fallback to plaintext key transport.
func WrapX25519(cek, recipientPub []byte) (wrapped, ephemeralPub []byte, aerr *apierr.Error) {
	if len(cek) != CEKSize {
		return nil, nil, apierr.Crypto(apierr.KeyLength, "CEK must be 32 bytes")
	}
	if len(recipientPub) != curve25519.PointSize {
		return nil, nil, apierr.Crypto(apierr.KeyLength, "recipient public key must be 32 bytes")
	}

	ephPriv, ephPub, aerr := GenerateX25519KeyPair()
	if aerr != nil {
		return nil, nil, aerr
	}

	shared, err := curve25519.X25519(ephPriv, recipientPub)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.CryptoFailed, "ECDH failed", err)
	}

	kek, aerr := deriveKEK(shared)
	if aerr != nil {
		return nil, nil, aerr
	}

	wrapped, aerr = Encrypt(cek, kek)
	if aerr != nil {
		return nil, nil, aerr
	}
	return wrapped, ephPub, nil
}

// UnwrapX25519 rederives the KEK from the recipient's private key and the
// ephemeral public key, verifies the tag, and returns the CEK.
func UnwrapX25519(wrapped, ephemeralPub, recipientPriv []byte) ([]byte, *apierr.Error) {
	if len(recipientPriv) != curve25519.ScalarSize {
		return nil, apierr.Crypto(apierr.KeyLength, "recipient private key must be 32 bytes")
	}
	if len(ephemeralPub) != curve25519.PointSize {
		return nil, apierr.Crypto(apierr.KeyLength, "ephemeral public key must be 32 bytes")
	}

	shared, err := curve25519.X25519(recipientPriv, ephemeralPub)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "ECDH failed", err)
	}

	kek, aerr := deriveKEK(shared)
	if aerr != nil {
		return nil, aerr
	}

	return Decrypt(wrapped, kek)
}
