package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mdgen/internal/logging"
	"mdgen/internal/target"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the generator once for the configured model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

// runGenerate resolves the config, builds the Driver and runs it once
// against demoModel (the CLI's stand-in for the out-of-scope model
// loader, see fixture.go), printing one line per file.
func runGenerate(cmd *cobra.Command) error {
	cfg, err := resolvedConfig.Resolve()
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	d := &target.Driver{Config: cfg, Parallel: jobs > 1, MaxConcurrency: jobs}
	result, err := d.Run(demoModel())
	if err != nil {
		return err
	}

	log := logging.Get(logging.CategoryDriver)
	for _, f := range result.Files {
		if f.Err != nil {
			log.Warnw("generate failed", "path", f.Path, "error", f.Err)
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", f.Path, f.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.Path)
	}

	return result.Err()
}
