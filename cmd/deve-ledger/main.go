// Package main provides the deve-ledger CLI entry point: a thin
// terminal harness exercising the core ledger/sync/merge/source-control
// operations directly, the way cmd/nornicdb's shell command exercises
// NornicDB's engine without a network hop.
package main

import (
	"fmt"
	"os"

	"github.com/orneryd/deve-ledger/pkg/config"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// defaultConfig supplies the flag defaults below. Environment variables
// (DEVE_LEDGER_DIR, DEVE_LEDGER_SNAPSHOT_DEPTH, ...) override them;
// explicit flags override the environment in turn.
var defaultConfig = func() *config.Config {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid environment config, using built-in defaults: %v\n", err)
		return &config.Config{Ledger: config.LedgerConfig{Dir: "./.ledger", SnapshotDepth: 200}}
	}
	return cfg
}()

func main() {
	rootCmd := &cobra.Command{
		Use:   "deve-ledger",
		Short: "deve-ledger - local-first collaborative note ledger",
		Long: `deve-ledger is an append-only, peer-replicated document ledger.

Features:
  • Character-level operation log with Unicode scalar positions
  • Ed25519 peer identity and AES-256-GCM encrypted replication
  • Version-vector sync with snapshot fallback
  • Three-way text merge with conflict hunks
  • Git-like staging/commit/diff against stored snapshots`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("deve-ledger v%s\n", version)
		},
	})

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newDocCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newStageCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newLogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func ledgerDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("ledger-dir", defaultConfig.Ledger.Dir, "Ledger directory")
}
