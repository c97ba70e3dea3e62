// Package main is the entry point for the mcpkit CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpkit/cmd/mcpkit/commands"
)

func main() {
	os.Exit(commands.Execute())
}
