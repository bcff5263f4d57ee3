package sourcectl

import (
	"errors"
	"strings"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
	"github.com/pmezard/go-difflib/difflib"
)

// ErrDocNotFound reports that neither the current document set nor a
// committed snapshot knows about a path.
var ErrDocNotFound = errors.New("sourcectl: no document at path")

// DiffDocPath renders a unified diff of the last-committed content
// against the current content for path. current carries the live
// document set (as ListChanges does); the committed side is read
// straight from the commit_snapshots table.
func DiffDocPath(db *store.Store, path string, current []CurrentDoc) (string, error) {
	var currentDoc *CurrentDoc
	for i := range current {
		if current[i].Path == path {
			currentDoc = &current[i]
			break
		}
	}

	var docID models.DocID
	switch {
	case currentDoc != nil:
		docID = currentDoc.DocID
	default:
		id, found, err := findDocIDBySnapshotPath(db, path)
		if err != nil {
			return "", err
		}
		if !found {
			return "", ErrDocNotFound
		}
		docID = id
	}

	var committedContent string
	err := db.View(func(txn *store.Txn) error {
		raw, err := txn.Get(store.TableCommitSnapshots, docID.Bytes())
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		committedContent = string(raw)
		return nil
	})
	if err != nil {
		return "", err
	}

	var liveContent string
	if currentDoc != nil {
		liveContent = currentDoc.Content
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(committedContent),
		B:        difflib.SplitLines(liveContent),
		FromFile: "committed/" + path,
		ToFile:   "working/" + path,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func findDocIDBySnapshotPath(db *store.Store, path string) (models.DocID, bool, error) {
	var id models.DocID
	found := false
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TableCommitSnapshotPaths, nil, func(key, value []byte) error {
			if strings.Compare(string(value), path) == 0 {
				copy(id[:], key)
				found = true
			}
			return nil
		})
	})
	return id, found, err
}
