// Package main is the entry point for the autofix engine CLI.
package main

import (
	"log"

	"github.com/sourcefix/autofix/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
