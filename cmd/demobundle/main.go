package main

import (
	"fmt"
	"os"

	"github.com/allyourbase/demobundle/internal/cli"
)

// Set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
