// Command forecast fits both model families to one selection of the crime
// dataset and prints the results, without starting the HTTP server.
package main

import (
	"errors"
	"fmt"
	"os"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errAllFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
