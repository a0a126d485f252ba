package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var wrapActors string

var wrapCmd = &cobra.Command{
	Use:   "wrap <recordID>",
	Short: "Wrap a record's content-encryption key for a set of actors",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if wrapActors == "" {
			return fmt.Errorf("vaultctl: --actors is required")
		}
		req := wrapRequest{
			RecordID: args[0],
			ActorIDs: strings.Split(wrapActors, ","),
		}
		var res wrapResponse
		if err := postJSON("/v1/wrap", req, &res); err != nil {
			return err
		}
		for actorID := range res.WrappedKeys {
			fmt.Println(actorID)
		}
		return nil
	},
}

type wrapRequest struct {
	RecordID string   `json:"recordId"`
	ActorIDs []string `json:"actorIds"`
}

type wrappedKeyEnvelope struct {
	Tag                string `json:"tag"`
	EphemeralPublicKey []byte `json:"ephemeralPublicKey,omitempty"`
	Ciphertext         []byte `json:"ciphertext"`
}

type wrapResponse struct {
	WrappedKeys map[string]wrappedKeyEnvelope `json:"wrappedKeys"`
}

func init() {
	wrapCmd.Flags().StringVar(&wrapActors, "actors", "", "comma-separated actor IDs to wrap for")
	rootCmd.AddCommand(wrapCmd)
}
