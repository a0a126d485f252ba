package gate

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardanohealth/vault/internal/apierr"
)

func signPayload(t *testing.T, priv ed25519.PrivateKey, payload SignaturePayload) []byte {
	msg, err := payload.CanonicalBytes()
	require.NoError(t, err)
	return ed25519.Sign(priv, msg)
}

func TestVerifyWalletSignatureAcceptsValidEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	payload := SignaturePayload{Operation: "revoke", RecordID: "rec-1", Timestamp: 1000, Network: "mainnet"}
	sig := signPayload(t, priv, payload)

	aerr := VerifyWalletSignature(SchemeEd25519, payload, sig, pub, false)
	require.Nil(t, aerr)
}

func TestVerifyWalletSignatureRejectsTamperedPayload(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	payload := SignaturePayload{Operation: "revoke", RecordID: "rec-1", Timestamp: 1000, Network: "mainnet"}
	sig := signPayload(t, priv, payload)

	tampered := payload
	tampered.RecordID = "rec-2"

	aerr := VerifyWalletSignature(SchemeEd25519, tampered, sig, pub, false)
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.Unauthorized))
}

func TestVerifyWalletSignatureRejectsHMACInProductionMode(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	payload := SignaturePayload{Operation: "revoke", RecordID: "rec-1", Timestamp: 1000, Network: "mainnet"}

	aerr := VerifyWalletSignature(SchemeHMAC, payload, []byte("whatever"), pub, false)
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.Unauthorized))
}

func TestVerifyWalletSignatureMalformedPublicKey(t *testing.T) {
	payload := SignaturePayload{Operation: "revoke", RecordID: "rec-1", Timestamp: 1000, Network: "mainnet"}

	aerr := VerifyWalletSignature(SchemeEd25519, payload, []byte("sig"), []byte("short-key"), false)
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.Unauthorized))
}

func TestCanonicalBytesOrdersExtraKeysDeterministically(t *testing.T) {
	p1 := SignaturePayload{Operation: "wrap", Extra: map[string]any{"b": 1, "a": 2}}
	p2 := SignaturePayload{Operation: "wrap", Extra: map[string]any{"a": 2, "b": 1}}

	b1, err := p1.CanonicalBytes()
	require.NoError(t, err)
	b2, err := p2.CanonicalBytes()
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
