package crypto

import (
	"bytes"
	"testing"

	"github.com/cardanohealth/vault/internal/apierr"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cek, err := GenerateCEK()
	if err != nil {
		t.Fatalf("GenerateCEK: %v", err)
	}

	plaintext := []byte("hello world!")
	pkg, aerr := Encrypt(plaintext, cek)
	if aerr != nil {
		t.Fatalf("Encrypt: %v", aerr)
	}

	got, aerr := Decrypt(pkg, cek)
	if aerr != nil {
		t.Fatalf("Decrypt: %v", aerr)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("roundtrip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptTamperedPackageFailsAuth(t *testing.T) {
	cek, _ := GenerateCEK()
	pkg, aerr := Encrypt([]byte("hello world!"), cek)
	if aerr != nil {
		t.Fatalf("Encrypt: %v", aerr)
	}

	tampered := append([]byte(nil), pkg...)
	tampered[len(tampered)-1] ^= 0xFF

	_, aerr = Decrypt(tampered, cek)
	if aerr == nil {
		t.Fatal("expected AuthFailed, got nil error")
	}
	if aerr.Code != apierr.CryptoFailed || aerr.Reason != apierr.AuthFailed {
		t.Fatalf("expected CryptoFailed.AuthFailed, got %v", aerr)
	}
}

func TestDecryptShortPackageIsMalformed(t *testing.T) {
	cek, _ := GenerateCEK()
	_, aerr := Decrypt([]byte("too short"), cek)
	if aerr == nil || aerr.Reason != apierr.Malformed {
		t.Fatalf("expected CryptoFailed.Malformed, got %v", aerr)
	}
}

func TestEncryptBadCEKLength(t *testing.T) {
	_, aerr := Encrypt([]byte("hello"), []byte("too-short"))
	if aerr == nil || aerr.Reason != apierr.KeyLength {
		t.Fatalf("expected CryptoFailed.KeyLength, got %v", aerr)
	}
}

func TestSha256Hex(t *testing.T) {
	got := Sha256Hex([]byte("hello world!"))
	if len(got) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d chars", len(got))
	}
}
