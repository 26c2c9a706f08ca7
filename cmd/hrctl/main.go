// Package main is the entry point for the hrctl operator CLI.
package main

import (
	"os"

	"hr-approvals/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
