// Command tabula edits CSV and TSV files as a typed grid in the terminal.
package main

import (
	"os"

	"github.com/zjrosen/tabula/cmd"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cmd.SetVersion(version + " (" + commit + ")")
	if cmd.Execute() != nil {
		os.Exit(1)
	}
}
