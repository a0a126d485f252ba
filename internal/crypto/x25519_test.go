package crypto

import (
	"bytes"
	"testing"
)

func TestWrapUnwrapX25519RoundTrip(t *testing.T) {
	recipientPriv, recipientPub, aerr := GenerateX25519KeyPair()
	if aerr != nil {
		t.Fatalf("GenerateX25519KeyPair: %v", aerr)
	}

	cek, _ := GenerateCEK()

	wrapped, ephPub, aerr := WrapX25519(cek, recipientPub)
	if aerr != nil {
		t.Fatalf("WrapX25519: %v", aerr)
	}

	got, aerr := UnwrapX25519(wrapped, ephPub, recipientPriv)
	if aerr != nil {
		t.Fatalf("UnwrapX25519: %v", aerr)
	}
	if !bytes.Equal(got, cek) {
		t.Fatalf("unwrapped CEK mismatch")
	}
}

func TestUnwrapX25519WrongRecipientFails(t *testing.T) {
	_, recipientPub, _ := GenerateX25519KeyPair()
	otherPriv, _, _ := GenerateX25519KeyPair()

	cek, _ := GenerateCEK()
	wrapped, ephPub, aerr := WrapX25519(cek, recipientPub)
	if aerr != nil {
		t.Fatalf("WrapX25519: %v", aerr)
	}

	if _, aerr := UnwrapX25519(wrapped, ephPub, otherPriv); aerr == nil {
		t.Fatal("expected unwrap with wrong private key to fail")
	}
}
