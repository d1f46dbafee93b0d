// Package main is the entry point for the dya CLI tool.
package main

import (
	"os"

	"github.com/natanmedeiros/dynalias/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
