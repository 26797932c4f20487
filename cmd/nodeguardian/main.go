// Command nodeguardian runs the NodeGuardian control loop, or validates a
// rule file offline via the same ingest checks the watch path uses.
package main

import (
	"fmt"
	"os"

	"github.com/nodeguardian/nodeguardian/cmd/nodeguardian/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
