package ledger

import (
	"github.com/orneryd/deve-ledger/pkg/metadata"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/treedelta"
)

// ReconcileRename is the primitive an external file watcher calls when
// it observes path bound to inode: it tells the caller whether this is
// a rename of an already-known file (inode seen before, at a different
// path) or a genuinely new one, and keeps the metadata store
// consistent either way. Grounded on
// original_source/crates/core/src/ledger/node_check.rs's doc/node
// consistency repair, generalized from a batch reconciliation pass
// into the single-event form a watcher calls per filesystem
// notification.
//
// Returns the reconciled DocID, whether a rename was detected, and (if
// anything changed) the TreeDelta announcing it.
func (m *Manager) ReconcileRename(path string, inode models.FileNodeID) (models.DocID, bool, *treedelta.TreeDelta, error) {
	priorDocID, known, err := metadata.GetDocIDByInode(m.localStore, inode)
	if err != nil {
		return models.DocID{}, false, nil, err
	}

	if known {
		priorPath, found, err := metadata.GetPathByDocID(m.localStore, priorDocID)
		if err != nil {
			return models.DocID{}, false, nil, err
		}
		if found {
			if priorPath != path {
				if err := metadata.RenameDoc(m.localStore, priorPath, path); err != nil {
					return models.DocID{}, false, nil, err
				}
				delta := treedelta.BuildUpdate(fileNode(priorDocID, path))
				return priorDocID, true, &delta, nil
			}
			// Same inode, same path: nothing to reconcile.
			return priorDocID, false, nil, nil
		}
		// The inode's document no longer exists: handle path as new below.
	}

	docID, found, err := metadata.GetDocID(m.localStore, path)
	if err != nil {
		return models.DocID{}, false, nil, err
	}
	var delta *treedelta.TreeDelta
	if !found {
		docID, err = metadata.CreateDocID(m.localStore, path)
		if err != nil {
			return models.DocID{}, false, nil, err
		}
		d := treedelta.BuildAdd(fileNode(docID, path))
		delta = &d
	}
	if err := metadata.BindInode(m.localStore, inode, docID); err != nil {
		return models.DocID{}, false, nil, err
	}
	return docID, false, delta, nil
}
