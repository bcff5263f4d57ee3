package main

import (
	"fmt"

	"github.com/orneryd/deve-ledger/pkg/sourcectl"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show documents changed since the last commit",
		RunE:  runStatus,
	}
	ledgerDirFlag(cmd)
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docsByPath, err := currentDocsByPath(s)
	if err != nil {
		return err
	}
	current := make([]sourcectl.CurrentDoc, 0, len(docsByPath))
	for _, d := range docsByPath {
		current = append(current, d)
	}

	changes, err := sourcectl.ListChanges(s.Manager.LocalStore(), current)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Println("nothing to commit, working tree clean")
		return nil
	}
	for _, c := range changes {
		fmt.Printf("%-10s %s\n", c.Kind, c.Path)
	}
	return nil
}

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [path]",
		Short: "Show a unified diff of a document against its last commit",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiff,
	}
	ledgerDirFlag(cmd)
	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	path := args[0]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docsByPath, err := currentDocsByPath(s)
	if err != nil {
		return err
	}
	current := make([]sourcectl.CurrentDoc, 0, len(docsByPath))
	for _, d := range docsByPath {
		current = append(current, d)
	}

	diff, err := sourcectl.DiffDocPath(s.Manager.LocalStore(), path, current)
	if err != nil {
		return fmt.Errorf("diff %s: %w", path, err)
	}
	fmt.Print(diff)
	return nil
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		RunE:  runLog,
	}
	ledgerDirFlag(cmd)
	cmd.Flags().Int("limit", 20, "Maximum number of commits to show")
	return cmd
}

func runLog(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	commits, err := sourcectl.ListCommits(s.Manager.LocalStore(), limit)
	if err != nil {
		return err
	}
	for _, c := range commits {
		fmt.Printf("%s  %s  (%d docs)\n", c.CommitID, c.Message, c.DocCount)
	}
	return nil
}
