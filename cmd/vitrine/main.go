// Command vitrine serves and probes the affiliate product catalog.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/vitrine/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
