// Package main is the entry point for the interp CLI.
package main

import (
	"os"

	"consumption-interp/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
