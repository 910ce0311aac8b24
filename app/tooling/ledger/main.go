// This program provides support for working with a ledger from the command
// line, on a running node or offline from an exported document.
package main

import (
	"github.com/ardanlabs/anchorchain/app/tooling/ledger/cmd"
)

func main() {
	cmd.Execute()
}
