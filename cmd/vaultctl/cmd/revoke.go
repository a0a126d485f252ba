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
	revokeActorID string
	revokeNetwork string
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <recordID>",
	Short: "Revoke an actor's standing access and rotate the record's content-encryption key",
	Long: `revoke re-encrypts the record under a fresh content-encryption
key and re-wraps it for every remaining actor. This is the
demo-only client-side path spec.md explicitly scopes out of
production: the owner's unwrapped CEK, obtained by manually unwrapping
their own envelope (never done by vaultd itself), is sent to the
server so it can re-encrypt without the server ever holding a
recipient's private key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		recordID := args[0]

		priv, err := promptWalletKey()
		if err != nil {
			return err
		}

		fmt.Print("owner content-encryption key (hex, demo-only): ")
		rawCEK, err := term.ReadPassword(0)
		fmt.Println()
		if err != nil {
			return fmt.Errorf("vaultctl: failed to read owner CEK: %w", err)
		}
		ownerCEK, err := hex.DecodeString(string(rawCEK))
		if err != nil {
			return fmt.Errorf("vaultctl: malformed CEK hex: %w", err)
		}

		now := time.Now().Unix()
		payload := gate.SignaturePayload{
			Operation: "revoke",
			RecordID:  recordID,
			Timestamp: now,
			Network:   revokeNetwork,
			Extra:     map[string]any{"revokedActorId": revokeActorID},
		}
		msg, err := payload.CanonicalBytes()
		if err != nil {
			return fmt.Errorf("vaultctl: failed to canonicalize signature payload: %w", err)
		}
		sig := ed25519.Sign(priv, msg)

		req := revokeRequest{
			RecordID:       recordID,
			RevokedActorID: revokeActorID,
			OwnerCEK:       ownerCEK,
			AuthProof: authProof{
				Scheme:          "ed25519",
				WalletPublicKey: priv.Public().(ed25519.PublicKey),
				Signature:       sig,
				Timestamp:       now,
				Network:         revokeNetwork,
			},
		}
		var res revokeResponse
		if err := postJSON("/v1/revoke", req, &res); err != nil {
			return err
		}
		if res.NoOp {
			fmt.Println("no-op: actor was never wrapped for this record")
			return nil
		}
		fmt.Println("revoked")
		return nil
	},
}

type revokeRequest struct {
	RecordID       string    `json:"recordId"`
	RevokedActorID string    `json:"revokedActorId"`
	OwnerCEK       []byte    `json:"ownerCek"`
	AuthProof      authProof `json:"authProof"`
}

type revokeResponse struct {
	NoOp bool `json:"noOp,omitempty"`
}

func init() {
	revokeCmd.Flags().StringVar(&revokeActorID, "actor", "", "actor ID to revoke")
	revokeCmd.Flags().StringVar(&revokeNetwork, "network", "preprod", "Cardano network the wallet signature is scoped to")
	_ = revokeCmd.MarkFlagRequired("actor")
	rootCmd.AddCommand(revokeCmd)
}
