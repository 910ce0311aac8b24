package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Decode and validate an exported ledger",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := readLedger(args[0], format)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}

		tip := "none"
		if latest, ok := l.Latest(); ok {
			tip = latest.Digest().String()
		}

		pterm.Success.Printfln("valid ledger: blocks[%d] payloads[%d] tip[%s]", l.Len(), l.Payloads(), tip)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&format, "format", "f", "store", "Document format, store or inline.")
}
