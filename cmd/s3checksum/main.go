// Package main provides the entry point for the s3checksum CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/input-output-hk/s3-checksum/cmd/s3checksum/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
