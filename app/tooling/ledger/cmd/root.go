// Package cmd contains the ledger app commands.
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/spf13/cobra"
)

var (
	url    string
	format string
)

var client = http.Client{
	Timeout: 30 * time.Second,
}

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Anchor payloads and verify ledgers",
}

// Execute runs the command selected on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// readLedger decodes and validates the document stored in the file. A path
// of "-" reads the document from stdin.
func readLedger(path string, name string) (*ledger.Ledger, error) {
	f, err := ledger.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch path {
	case "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return ledger.DecodeFormat(data, f)
}
