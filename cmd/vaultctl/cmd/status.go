package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <recordID>",
	Short: "Print a record's public metadata projection",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		var res metadataResponse
		if err := getJSON("/v1/records/"+args[0], &res); err != nil {
			return err
		}
		out, err := json.MarshalIndent(res.Record, "", "  ")
		if err != nil {
			return fmt.Errorf("vaultctl: failed to render record: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

type publicProjection struct {
	RecordID      string `json:"recordId"`
	Owner         string `json:"owner"`
	CIDHash       string `json:"cidHash"`
	Status        string `json:"status"`
	Epoch         int    `json:"epoch"`
	OriginalName  string `json:"originalName"`
	MimeType      string `json:"mimeType"`
	OriginalSize  int64  `json:"originalSize"`
	EncryptedSize int64  `json:"encryptedSize"`
	ActorCount    int    `json:"actorCount"`
}

type metadataResponse struct {
	Record publicProjection `json:"record"`
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
