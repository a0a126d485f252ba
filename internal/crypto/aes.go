package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/cardanohealth/vault/internal/apierr"
)

// CEKSize is the length in bytes of a content-encryption key (AES-256).
const CEKSize = 32

// NonceSize is the length in bytes of the AES-GCM nonce used throughout
// the vault's wire format.
const NonceSize = 12

// TagSize is the length in bytes of the AES-GCM authentication tag.
const TagSize = 16

// GenerateCEK returns 32 random bytes from a cryptographic RNG, suitable
// for use as an AES-256-GCM content-encryption key.
func GenerateCEK() ([]byte, error) {
	cek := make([]byte, CEKSize)
	if _, err := io.ReadFull(rand.Reader, cek); err != nil {
		return nil, apierr.Wrap(apierr.Internal, "failed to generate CEK", err)
	}
	return cek, nil
}

func newGCM(key []byte) (cipher.AEAD, *apierr.Error) {
	if len(key) != CEKSize {
		return nil, apierr.Crypto(apierr.KeyLength, "key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "failed to create AES cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "failed to create GCM", err)
	}
	return gcm, nil
}

// Encrypt authenticated-encrypts plaintext under CEK using AES-256-GCM
// with a fresh 96-bit nonce, and returns the canonical package layout
// IV(12) || AuthTag(16) || Ciphertext(n).
func Encrypt(plaintext, cek []byte) ([]byte, *apierr.Error) {
	gcm, aerr := newGCM(cek)
	if aerr != nil {
		return nil, aerr
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, apierr.Wrap(apierr.Internal, "failed to generate nonce", err)
	}

	// Seal appends ciphertext||tag; we want IV||tag||ciphertext on the
	// wire, so split and reassemble.
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	pkg := make([]byte, 0, NonceSize+TagSize+len(ciphertext))
	pkg = append(pkg, nonce...)
	pkg = append(pkg, tag...)
	pkg = append(pkg, ciphertext...)
	return pkg, nil
}

// Decrypt reverses Encrypt, verifying the GCM tag. It fails with
// CryptoFailed.Malformed if pkg is shorter than 28 bytes, KeyLength if
// cek isn't 32 bytes, and CryptoFailed.AuthFailed if the tag doesn't
// verify.
func Decrypt(pkg, cek []byte) ([]byte, *apierr.Error) {
	if len(pkg) < NonceSize+TagSize {
		return nil, apierr.Crypto(apierr.Malformed, "package shorter than IV+tag")
	}

	gcm, aerr := newGCM(cek)
	if aerr != nil {
		return nil, aerr
	}

	nonce := pkg[:NonceSize]
	tag := pkg[NonceSize : NonceSize+TagSize]
	ciphertext := pkg[NonceSize+TagSize:]

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, apierr.Crypto(apierr.AuthFailed, "GCM tag verification failed")
	}
	return plaintext, nil
}
