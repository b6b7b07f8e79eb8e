// Package main is the entry point for the flowscope host.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/flowscope/internal/cli"

	// Compiled-in plugins register themselves at link time.
	_ "github.com/dshills/flowscope/internal/plugins/logshield"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
