package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mdgen/internal/target"
)

var fmtCheckCmd = &cobra.Command{
	Use:   "fmt-check",
	Short: "Report files that generate would change, without writing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFmtCheck(cmd)
	},
}

// runFmtCheck runs the driver with DryRun set and compares each file's
// would-be text against what is currently on disk, printing one drift line
// per differing file. Exits non-zero (via the returned error) when any
// file would change, the same contract `gofmt -l` and similar
// drift-checking subcommands use.
func runFmtCheck(cmd *cobra.Command) error {
	cfg, err := resolvedConfig.Resolve()
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	d := &target.Driver{Config: cfg, Parallel: jobs > 1, MaxConcurrency: jobs, DryRun: true}
	result, err := d.Run(demoModel())
	if err != nil {
		return err
	}

	drifted := 0
	for _, f := range result.Files {
		if f.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", f.Path, f.Err)
			continue
		}
		onDisk, readErr := os.ReadFile(f.Path)
		if readErr == nil && string(onDisk) == f.Text {
			continue
		}
		drifted++
		fmt.Fprintln(cmd.OutOrStdout(), f.Path)
	}

	if err := result.Err(); err != nil {
		return err
	}
	if drifted > 0 {
		return fmt.Errorf("fmt-check: %d file(s) would change", drifted)
	}
	return nil
}
