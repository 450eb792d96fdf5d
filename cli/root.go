package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mshekow/vm-benchmark/config"
)

var (
	logLevel   = &slog.LevelVar{} // defaults to Info
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "vm-benchmark",
	Short: "Benchmark VM types by running a workload pod per node pool and comparing the results",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logLevel.Set(slog.LevelDebug)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "vm-benchmark.yaml", "Path to the benchmark configuration file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

// loadConfig reads the configuration file and applies flag overrides shared by the
// run and reparse commands.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("normalize") {
		normalize, _ := cmd.Flags().GetBool("normalize")
		cfg.Normalize = normalize
	}
	return cfg, nil
}
