// Command mdgen is the CLI entry point for the model-driven code
// generator (spec.md §2, "Target Drivers" C9 fronted by a CLI). Grounded
// on codenerd/cmd/nerd/main.go's root cobra command, persistent-flag
// registration and zap-logger-in-PersistentPreRunE shape, trimmed to the
// handful of subcommands this generator actually needs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mdgen/internal/config"
	"mdgen/internal/logging"
)

var (
	configPath string
	verbose    bool
	jobs       int

	resolvedConfig *config.File
)

var rootCmd = &cobra.Command{
	Use:   "mdgen",
	Short: "Model-driven code generator",
	Long: `mdgen walks an in-memory domain model and emits per-object source
files, a per-model object store, and a module index, diff-merging each
output against whatever is already on disk under region directives.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		logger, err := zapCfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logging.Init(logger)

		f, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		resolvedConfig = f
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mdgen.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 1, "Generate per-object files with up to N concurrent workers (1 = sequential)")

	rootCmd.AddCommand(generateCmd, watchCmd, fmtCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig re-reads configPath, shared by the root command's
// PersistentPreRunE and watch's reload-on-change path.
func loadConfig() (*config.File, error) {
	return config.Load(configPath)
}
