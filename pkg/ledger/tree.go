package ledger

import (
	"fmt"
	"path/filepath"

	"github.com/orneryd/deve-ledger/pkg/metadata"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/oplog"
	"github.com/orneryd/deve-ledger/pkg/treedelta"
)

// treeNodeID derives the stable file-tree NodeID for docID. NodeID and
// DocID are both random 128-bit UUIDs and spec.md ties them 1:1 for a
// file node, so the DocID's own bytes double as its NodeID rather than
// allocating and persisting a second identifier.
func treeNodeID(docID models.DocID) models.NodeID {
	return models.NodeID(docID)
}

func fileNode(docID models.DocID, path string) treedelta.FileNode {
	id := docID
	return treedelta.FileNode{
		NodeID: treeNodeID(docID),
		Name:   filepath.Base(path),
		Path:   path,
		DocID:  &id,
	}
}

// CreateDocument allocates a DocID for path and returns the TreeDelta
// announcing the new node (spec.md §4.11: a TreeDelta is emitted on
// any mutation).
func (m *Manager) CreateDocument(path string) (models.DocID, treedelta.TreeDelta, error) {
	docID, err := metadata.CreateDocID(m.localStore, path)
	if err != nil {
		return models.DocID{}, treedelta.TreeDelta{}, err
	}
	return docID, treedelta.BuildAdd(fileNode(docID, path)), nil
}

// RenameDocument moves oldPath's document to newPath, preserving its
// DocID, and returns the TreeDelta announcing the node's new path.
func (m *Manager) RenameDocument(oldPath, newPath string) (treedelta.TreeDelta, error) {
	docID, found, err := metadata.GetDocID(m.localStore, oldPath)
	if err != nil {
		return treedelta.TreeDelta{}, err
	}
	if !found {
		return treedelta.TreeDelta{}, metadata.ErrPathNotExists
	}
	if err := metadata.RenameDoc(m.localStore, oldPath, newPath); err != nil {
		return treedelta.TreeDelta{}, err
	}
	return treedelta.BuildUpdate(fileNode(docID, newPath)), nil
}

// DeleteDocument destroys the document at path: its metadata entries,
// every recorded op, and every snapshot (spec.md §3's "destroyed only
// by delete_doc, which also purges ops, snapshots, and metadata
// entries"). Returns the TreeDelta announcing the node's removal.
func (m *Manager) DeleteDocument(path string) (treedelta.TreeDelta, error) {
	docID, found, err := metadata.GetDocID(m.localStore, path)
	if err != nil {
		return treedelta.TreeDelta{}, err
	}
	if !found {
		return treedelta.TreeDelta{}, metadata.ErrPathNotExists
	}
	if err := oplog.PurgeDoc(m.localStore, docID); err != nil {
		return treedelta.TreeDelta{}, fmt.Errorf("ledger: purge doc %s: %w", docID, err)
	}
	if err := metadata.DeleteDoc(m.localStore, path); err != nil {
		return treedelta.TreeDelta{}, err
	}
	return treedelta.BuildRemove(treeNodeID(docID)), nil
}
