package main

import (
	"fmt"
	"time"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/sourcectl"
	"github.com/spf13/cobra"
)

func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage [path...]",
		Short: "Stage one or more documents for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runStage,
	}
	ledgerDirFlag(cmd)
	return cmd
}

func runStage(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now().UnixMilli()
	for _, path := range args {
		if err := sourcectl.StageFile(s.Manager.LocalStore(), path, now); err != nil {
			return fmt.Errorf("stage %s: %w", path, err)
		}
		fmt.Printf("staged %s\n", path)
	}
	return nil
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [message]",
		Short: "Commit the staged documents",
		Args:  cobra.ExactArgs(1),
		RunE:  runCommit,
	}
	ledgerDirFlag(cmd)
	return cmd
}

func runCommit(cmd *cobra.Command, args []string) error {
	ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
	message := args[0]

	s, err := openSession(ledgerDir)
	if err != nil {
		return err
	}
	defer s.Close()

	docsByPath, err := currentDocsByPath(s)
	if err != nil {
		return err
	}

	localStore := s.Manager.LocalStore()
	record, err := sourcectl.CreateCommitWithSnapshots(localStore, message, time.Now().UnixMilli(),
		func(path string) (models.DocID, string, bool) {
			doc, ok := docsByPath[path]
			if ok {
				return doc.DocID, doc.Content, true
			}
			// Deleted since staging: find its DocID from the last commit's
			// snapshot index so the stale snapshot rows get purged.
			docID, found, err := sourcectl.DocIDForSnapshotPath(localStore, path)
			if err != nil || !found {
				return models.DocID{}, "", false
			}
			return docID, "", false
		})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("committed %s (%d doc(s)): %s\n", record.CommitID, record.DocCount, record.Message)
	return nil
}

// currentDocsByPath reconstructs every local document's current
// content, keyed by path, for the source-control resolver and status
// commands to compare against committed snapshots.
func currentDocsByPath(s *session) (map[string]sourcectl.CurrentDoc, error) {
	docs, err := s.Manager.ListLocalDocs()
	if err != nil {
		return nil, err
	}
	out := make(map[string]sourcectl.CurrentDoc, len(docs))
	for _, d := range docs {
		content, err := reconstructLocal(s, d.DocID)
		if err != nil {
			return nil, err
		}
		out[d.Path] = sourcectl.CurrentDoc{DocID: d.DocID, Path: d.Path, Content: content}
	}
	return out, nil
}
