package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	ingestOwner string
	ingestMime  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Encrypt and upload a medical record, returning its record ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		path := args[0]
		plaintext, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("vaultctl: failed to read %s: %w", path, err)
		}

		mimeType := ingestMime
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(path))
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
		}

		req := ingestRequest{
			Owner:        ingestOwner,
			OriginalName: filepath.Base(path),
			MimeType:     mimeType,
			Plaintext:    plaintext,
		}
		var res ingestResponse
		if err := postJSON("/v1/ingest", req, &res); err != nil {
			return err
		}
		fmt.Println(res.RecordID)
		return nil
	},
}

type ingestRequest struct {
	Owner        string `json:"owner"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Plaintext    []byte `json:"plaintext"`
}

type ingestResponse struct {
	RecordID string `json:"recordId"`
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owning actor ID")
	ingestCmd.Flags().StringVar(&ingestMime, "mime", "", "MIME type override")
	_ = ingestCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(ingestCmd)
}
