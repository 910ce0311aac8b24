package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/spf13/cobra"
)

var output string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch the encoded ledger from a node",
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := export(url, format)
		if err != nil {
			log.Fatal(err)
		}

		if output == "" || output == "-" {
			os.Stdout.Write(doc)
			return
		}

		if err := os.WriteFile(output, doc, 0600); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	exportCmd.Flags().StringVarP(&format, "format", "f", "store", "Document format, store or inline.")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "File to write the document to.")
}

// export fetches the document and checks it before handing it back so a
// broken node doesn't produce a file that fails to verify later.
func export(url string, name string) ([]byte, error) {
	f, err := ledger.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(fmt.Sprintf("%s/v1/ledger?format=%s", url, f))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export: status %d: %s", resp.StatusCode, doc)
	}

	if _, err := ledger.DecodeFormat(doc, f); err != nil {
		return nil, fmt.Errorf("export: node returned an invalid ledger: %w", err)
	}

	return doc, nil
}
