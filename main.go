package main

import (
	"os"

	"github.com/dataset-tools/dataset-expander/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if cmd.IsPartial(err) {
			// Aborted runs still write their accepted progress.
			os.Exit(3)
		}
		os.Exit(1)
	}
}
