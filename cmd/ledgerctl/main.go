package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/double-entry-ledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		// A rejection has already been reported on stdout
		if !errors.Is(err, commands.ErrRejected) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
