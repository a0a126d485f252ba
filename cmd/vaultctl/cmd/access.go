package cmd

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cardanohealth/vault/internal/gate"
)

var (
	accessActorID string
	accessNetwork string
)

var accessCmd = &cobra.Command{
	Use:   "access <recordID>",
	Short: "Request a wrapped access key for an actor, signing the request with a wallet key",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		recordID := args[0]

		priv, err := promptWalletKey()
		if err != nil {
			return err
		}

		now := time.Now().Unix()
		payload := gate.SignaturePayload{
			Operation: "accessKey",
			RecordID:  recordID,
			Timestamp: now,
			Network:   accessNetwork,
		}
		msg, err := payload.CanonicalBytes()
		if err != nil {
			return fmt.Errorf("vaultctl: failed to canonicalize signature payload: %w", err)
		}
		sig := ed25519.Sign(priv, msg)

		req := accessKeyRequest{
			RecordID: recordID,
			ActorID:  accessActorID,
			AuthProof: authProof{
				Scheme:          "ed25519",
				WalletPublicKey: priv.Public().(ed25519.PublicKey),
				Signature:       sig,
				Timestamp:       now,
				Network:         accessNetwork,
			},
		}
		var res accessKeyResponse
		if err := postJSON("/v1/accessKey", req, &res); err != nil {
			return err
		}
		fmt.Printf("tag=%s ciphertext=%s\n", res.Envelope.Tag, hex.EncodeToString(res.Envelope.Ciphertext))
		return nil
	},
}

type authProof struct {
	Scheme          string `json:"scheme"`
	WalletPublicKey []byte `json:"walletPublicKey"`
	Signature       []byte `json:"signature"`
	Timestamp       int64  `json:"timestamp"`
	Network         string `json:"network"`
}

type accessKeyRequest struct {
	RecordID  string    `json:"recordId"`
	ActorID   string    `json:"actorId"`
	AuthProof authProof `json:"authProof"`
}

type accessKeyResponse struct {
	Envelope wrappedKeyEnvelope `json:"envelope"`
}

// promptWalletKey reads a hex-encoded Ed25519 private key from the
// terminal without echoing it, the way the teacher's restore command
// uses golang.org/x/term to read a recovery value. This is the only
// place vaultctl ever touches wallet key material directly.
func promptWalletKey() (ed25519.PrivateKey, error) {
	fmt.Print("wallet private key (hex): ")
	raw, err := term.ReadPassword(0)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("vaultctl: failed to read wallet key: %w", err)
	}
	decoded, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("vaultctl: malformed wallet key hex: %w", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("vaultctl: wallet key must be %d bytes, got %d", ed25519.PrivateKeySize, len(decoded))
	}
	return ed25519.PrivateKey(decoded), nil
}

func init() {
	accessCmd.Flags().StringVar(&accessActorID, "actor", "", "actor ID requesting access")
	accessCmd.Flags().StringVar(&accessNetwork, "network", "preprod", "Cardano network the wallet signature is scoped to")
	_ = accessCmd.MarkFlagRequired("actor")
	rootCmd.AddCommand(accessCmd)
}
