// Command vaultctl is the vault's operator CLI, mirroring the
// teacher's app/spike command tree: one cobra subcommand per RPC
// operation, talking to cmd/vaultd's HTTP transport.
package main

import (
	"fmt"
	"os"

	"github.com/cardanohealth/vault/cmd/vaultctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
