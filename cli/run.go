package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mshekow/vm-benchmark/cluster"
	"github.com/mshekow/vm-benchmark/parser"
	"github.com/mshekow/vm-benchmark/report"
	"github.com/mshekow/vm-benchmark/runner"
	"github.com/mshekow/vm-benchmark/store"
)

var (
	kubeconfig    string
	reuseExisting bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark workload on every configured VM type and write the comparison matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, err := parser.NewParser(cfg.Parser, cfg.ParserOptions)
		if err != nil {
			return err
		}

		client, err := cluster.NewKubeClient(kubeconfig, cfg.Namespace)
		if err != nil {
			return err
		}
		if err := client.CheckServer(cfg.MinServerVersion); err != nil {
			return err
		}

		st, err := store.NewStore(cfg.ResultDir)
		if err != nil {
			return err
		}

		mode := runner.CreateUnits
		if reuseExisting {
			mode = runner.ReuseExisting
		}
		results, err := runner.New(client, p, st, cfg).Run(cmd.Context(), mode)
		if err != nil {
			return err
		}

		for _, vmType := range cfg.VMTypeNames() {
			if rr, ok := results[vmType]; ok && rr.State != store.StateSucceeded {
				slog.Warn("VM type did not complete",
					slog.String("vmType", vmType),
					slog.String("state", string(rr.State)),
					slog.String("reason", rr.Err))
			}
		}

		rows := report.Aggregate(results, cfg.VMTypeNames(), cfg.Normalize)
		if err := report.WriteMatrixFile(cfg.Output, rows, cfg.VMTypeNames(), cfg.Normalize); err != nil {
			return err
		}
		slog.Info("wrote comparison matrix",
			slog.String("path", cfg.Output),
			slog.Int("rows", len(rows)),
			slog.String("sessionDir", st.SessionDir()))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file. Uses the default loading rules when empty.")
	runCmd.Flags().BoolVar(&reuseExisting, "reuse-existing", false, "Skip pod creation and collect results from the pods of an earlier run.")
	runCmd.Flags().Bool("normalize", false, "Override the configured normalization setting.")
	rootCmd.AddCommand(runCmd)
}
