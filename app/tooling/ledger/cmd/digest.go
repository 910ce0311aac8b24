package cmd

import (
	"fmt"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
	"github.com/spf13/cobra"
)

var hexOutput bool

var digestCmd = &cobra.Command{
	Use:   "digest TEXT",
	Short: "Print the payload digest of the text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(digestText(args[0], hexOutput))
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().BoolVarP(&hexOutput, "hex", "x", false, "Print the digest as hex.")
}

func digestText(text string, asHex bool) string {
	d := digest.Sum([]byte(text))
	if asHex {
		return d.Hex()
	}
	return d.String()
}
