package main

import (
	"fmt"
	"time"

	"github.com/orneryd/deve-ledger/pkg/metadata"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/protocol"
	"github.com/orneryd/deve-ledger/pkg/reconstruct"
	"github.com/orneryd/deve-ledger/pkg/treedelta"
	"github.com/spf13/cobra"
)

func newDocCmd() *cobra.Command {
	doc := &cobra.Command{
		Use:   "doc",
		Short: "Create, edit, and inspect documents",
	}

	createCmd := &cobra.Command{
		Use:   "create [path]",
		Short: "Create a new document at path",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocCreate,
	}
	ledgerDirFlag(createCmd)
	doc.AddCommand(createCmd)

	editCmd := &cobra.Command{
		Use:   "edit [path] [content]",
		Short: "Replace a document's content, recording the minimal diff as ops",
		Args:  cobra.ExactArgs(2),
		RunE:  runDocEdit,
	}
	ledgerDirFlag(editCmd)
	doc.AddCommand(editCmd)

	showCmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print a document's reconstructed content",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocShow,
	}
	ledgerDirFlag(showCmd)
	doc.AddCommand(showCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List known documents",
		RunE:  runDocList,
	}
	ledgerDirFlag(listCmd)
	doc.AddCommand(listCmd)

	renameCmd := &cobra.Command{
		Use:   "rename [old-path] [new-path]",
		Short: "Rename a document, preserving its DocID",
		Args:  cobra.ExactArgs(2),
		RunE:  runDocRename,
	}
	ledgerDirFlag(renameCmd)
	doc.AddCommand(renameCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete [path]",
		Short: "Destroy a document: purges its ops, snapshots, and metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocDelete,
	}
	ledgerDirFlag(deleteCmd)
	doc.AddCommand(deleteCmd)

	return doc
}

func runDocCreate(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	path := args[0]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docID, delta, err := s.Manager.CreateDocument(path)
	if err != nil {
		return fmt.Errorf("create doc: %w", err)
	}
	fmt.Printf("created %s -> %s\n", path, docID)
	return emitTreeUpdate(delta)
}

func runDocRename(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	oldPath, newPath := args[0], args[1]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	delta, err := s.Manager.RenameDocument(oldPath, newPath)
	if err != nil {
		return fmt.Errorf("rename doc: %w", err)
	}
	fmt.Printf("renamed %s -> %s\n", oldPath, newPath)
	return emitTreeUpdate(delta)
}

func runDocDelete(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	path := args[0]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	delta, err := s.Manager.DeleteDocument(path)
	if err != nil {
		return fmt.Errorf("delete doc: %w", err)
	}
	fmt.Printf("deleted %s\n", path)
	return emitTreeUpdate(delta)
}

// emitTreeUpdate announces delta the way a live session would push it
// over pkg/transport: wrapped in a ServerMessage and written as a JSON
// line, so every tree mutation is observable even from the one-shot
// CLI rather than only from a persistent daemon connection.
func emitTreeUpdate(delta treedelta.TreeDelta) error {
	msg := protocol.ServerMessage{Type: "tree_update", TreeUpdate: &delta}
	raw, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode tree update: %w", err)
	}
	fmt.Println(string(raw))
	return nil
}

func runDocEdit(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	path, content := args[0], args[1]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docID, found, err := metadata.GetDocID(s.Manager.LocalStore(), path)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no document at %s (run `doc create` first)", path)
	}

	oldContent, err := reconstructLocal(s, docID)
	if err != nil {
		return err
	}

	ops := reconstruct.ComputeDiff(oldContent, content)
	peer := s.Keys.PeerID()
	now := time.Now().UnixMilli()
	for _, op := range ops {
		if _, _, err := s.Manager.AppendLocalOp(docID, peer, op, now); err != nil {
			return fmt.Errorf("append op: %w", err)
		}
	}
	fmt.Printf("applied %d op(s) to %s\n", len(ops), path)
	return nil
}

func runDocShow(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	path := args[0]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docID, found, err := metadata.GetDocID(s.Manager.LocalStore(), path)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no document at %s", path)
	}

	content, err := reconstructLocal(s, docID)
	if err != nil {
		return err
	}
	fmt.Println(content)
	return nil
}

func runDocList(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := s.Manager.ListLocalDocs()
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Printf("%s  %s\n", d.DocID, d.Path)
	}
	return nil
}

func reconstructLocal(s *session, docID models.DocID) (string, error) {
	local := models.Local(s.Manager.LocalRepoID())
	base := ""
	entries, err := s.Manager.GetOps(local, docID)
	if err != nil {
		return "", err
	}
	snap, ok, err := s.Manager.LoadLatestSnapshot(local, docID)
	if err != nil {
		return "", err
	}
	ledgerEntries := make([]models.LedgerEntry, 0, len(entries))
	if ok {
		base = snap.Content
		for _, e := range entries {
			if e.GlobalSeq > snap.BaseSeq {
				ledgerEntries = append(ledgerEntries, e.LedgerEntry)
			}
		}
	} else {
		for _, e := range entries {
			ledgerEntries = append(ledgerEntries, e.LedgerEntry)
		}
	}
	return applyOntoBase(base, ledgerEntries), nil
}

func applyOntoBase(base string, entries []models.LedgerEntry) string {
	if base == "" {
		return reconstruct.ReconstructContent(entries)
	}
	seed := []models.LedgerEntry{{Op: models.Insert(0, base)}}
	return reconstruct.ReconstructContent(append(seed, entries...))
}
