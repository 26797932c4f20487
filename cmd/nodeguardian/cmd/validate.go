package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/nodeguardian/nodeguardian/internal/ngerrors"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/rulestore"
)

// newValidateCommand builds the offline "validate" subcommand: it runs a
// rule document through the same ingest validation the watch path applies,
// without ever touching a cluster. This lets a rule author catch a bad
// threshold expression or duration string in CI, before the rule reaches
// the Rule Store.
func newValidateCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "validate <rule-file.yaml|.json> [more files...]",
		Short: "Validate one or more rule documents offline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFiles(cmd, args)
		},
	}
	return c
}

func validateFiles(cmd *cobra.Command, paths []string) error {
	out := cmd.OutOrStdout()
	var failed int

	for _, path := range paths {
		if err := validateFile(path); err != nil {
			failed++
			var cfgErr *ngerrors.ConfigError
			if errors.As(err, &cfgErr) {
				fmt.Fprintf(out, "%s: INVALID — %v\n", path, cfgErr.Err)
				continue
			}
			fmt.Fprintf(out, "%s: ERROR — %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "%s: OK\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rule document(s) failed validation", failed, len(paths))
	}
	return nil
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var rule ngv1.NodeGuardianRule
	if err := yaml.UnmarshalStrict(data, &rule); err != nil {
		return &ngerrors.ConfigError{Subject: path, Err: fmt.Errorf("parsing: %w", err)}
	}

	if err := rulestore.Validate(&rule); err != nil {
		return &ngerrors.ConfigError{Subject: rule.Name, Err: err}
	}
	return nil
}
