package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new ledger directory",
		RunE:  runInit,
	}
	ledgerDirFlag(cmd)
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")

	fmt.Printf("Initializing ledger in %s\n", ledgerDir)
	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("  repo id:  %s\n", s.Manager.LocalRepoID())
	fmt.Printf("  peer id:  %s\n", s.Keys.PeerID())
	return nil
}
