// Package main is the entry point for the spoils CLI.
// The CLI is the developer terminal tool for interacting with the spoils API.
package main

import (
	"os"

	"spoils/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
