package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mshekow/vm-benchmark/parser"
	"github.com/mshekow/vm-benchmark/report"
	"github.com/mshekow/vm-benchmark/runner"
	"github.com/mshekow/vm-benchmark/store"
)

var sessionDir string

var reparseCmd = &cobra.Command{
	Use:   "reparse",
	Short: "Rebuild the comparison matrix from the raw logs of an earlier session, without touching the cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, err := parser.NewParser(cfg.Parser, cfg.ParserOptions)
		if err != nil {
			return err
		}

		st, err := store.OpenSession(sessionDir)
		if err != nil {
			return err
		}

		results := runner.Reparse(st, p, cfg.VMTypeNames())
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
	reparseCmd.Flags().StringVar(&sessionDir, "session", "", "Session directory containing the raw logs (required).")
	reparseCmd.MarkFlagRequired("session")
	reparseCmd.Flags().Bool("normalize", false, "Override the configured normalization setting.")
	rootCmd.AddCommand(reparseCmd)
}
