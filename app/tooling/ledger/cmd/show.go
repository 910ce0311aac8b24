package cmd

import (
	"log"
	"strconv"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const previewLen = 24

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Render the blocks of an exported ledger",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := readLedger(args[0], format)
		if err != nil {
			log.Fatal(err)
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(blockTable(l)).Render(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&format, "format", "f", "store", "Document format, store or inline.")
}

// blockTable builds the rows shown for the ledger, one per block after the
// header row.
func blockTable(l *ledger.Ledger) pterm.TableData {
	td := pterm.TableData{
		{"Index", "Prev", "Payload", "Digest", "Content"},
	}

	for i, blk := range l.Blocks() {
		prev := "-"
		if p, ok := blk.Prev(); ok {
			prev = p.Short()
		}

		content, _ := l.Payload(blk.PayloadDigest())

		td = append(td, []string{
			strconv.Itoa(i),
			prev,
			blk.PayloadDigest().Short(),
			blk.Digest().Short(),
			preview(content),
		})
	}

	return td
}

func preview(content []byte) string {
	s := []rune(string(content))
	if len(s) <= previewLen {
		return strconv.Quote(string(s))
	}
	return strconv.Quote(string(s[:previewLen])) + "..."
}
