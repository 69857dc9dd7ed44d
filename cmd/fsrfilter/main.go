// Command fsrfilter filters event files offline, classifies photon ancestry,
// and load tests a running filter service.
package main

import (
	"fmt"
	"os"

	"github.com/okian/fsrfilter/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
