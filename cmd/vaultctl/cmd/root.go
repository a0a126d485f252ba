package cmd

import (
	"github.com/spf13/cobra"
)

var serverAddr string

var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "Operate an Encrypted Medical Record Vault",
	Long: `vaultctl talks to a running vaultd over its HTTP transport to
ingest records, wrap content-encryption keys for actors, request
access, and revoke a wrapped actor's standing access.`,
}

// Execute runs the vaultctl command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8443", "vaultd HTTP transport base URL")
}
