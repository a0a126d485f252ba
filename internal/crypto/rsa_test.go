package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
)

func genTestRSAKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, pemBytes
}

func TestWrapUnwrapRSARoundTrip(t *testing.T) {
	priv, pubPEM := genTestRSAKey(t)
	cek, _ := GenerateCEK()

	wrapped, aerr := WrapRSA(cek, pubPEM)
	if aerr != nil {
		t.Fatalf("WrapRSA: %v", aerr)
	}

	got, aerr := UnwrapRSA(wrapped, priv)
	if aerr != nil {
		t.Fatalf("UnwrapRSA: %v", aerr)
	}
	if !bytes.Equal(got, cek) {
		t.Fatal("unwrapped CEK mismatch")
	}
}
