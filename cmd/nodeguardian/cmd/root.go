// Package cmd wires NodeGuardian's CLI subcommand surface: the default run
// command and the offline rule-file validate command.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the top-level nodeguardian command with its
// subcommands attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "nodeguardian",
		Short: "Cluster-level automated node remediation controller",
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newValidateCommand())

	return root
}
