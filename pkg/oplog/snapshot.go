package oplog

import (
	"sort"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
)

// SaveSnapshot persists content as the base state of docID at baseSeq,
// then prunes snapshots for that doc beyond snapshotDepth (oldest by
// BaseSeq goes first).
func SaveSnapshot(db *store.Store, docID models.DocID, baseSeq uint64, content string, snapshotDepth int) error {
	return db.Update(func(txn *store.Txn) error {
		key := store.EncodeUint64(baseSeq)
		if err := txn.Put(store.TableSnapshotData, key, []byte(content)); err != nil {
			return err
		}
		if err := txn.MultimapInsert(store.TableSnapshotIdx, docID.Bytes(), key); err != nil {
			return err
		}
		return pruneSnapshots(txn, docID, snapshotDepth)
	})
}

func pruneSnapshots(txn *store.Txn, docID models.DocID, snapshotDepth int) error {
	seqs, err := txn.MultimapGet(store.TableSnapshotIdx, docID.Bytes())
	if err != nil {
		return err
	}
	if len(seqs) <= snapshotDepth {
		return nil
	}
	sort.Slice(seqs, func(i, j int) bool {
		return store.DecodeUint64(seqs[i]) < store.DecodeUint64(seqs[j])
	})
	toPrune := seqs[:len(seqs)-snapshotDepth]
	for _, s := range toPrune {
		if err := txn.MultimapDelete(store.TableSnapshotIdx, docID.Bytes(), s); err != nil {
			return err
		}
		if err := txn.Delete(store.TableSnapshotData, s); err != nil {
			return err
		}
	}
	return nil
}

// LoadLatestSnapshot returns the snapshot with the greatest BaseSeq for
// docID, or (Snapshot{}, false) if none exists.
func LoadLatestSnapshot(db *store.Store, docID models.DocID) (models.Snapshot, bool, error) {
	var snap models.Snapshot
	found := false
	err := db.View(func(txn *store.Txn) error {
		seqs, err := txn.MultimapGet(store.TableSnapshotIdx, docID.Bytes())
		if err != nil {
			return err
		}
		if len(seqs) == 0 {
			return nil
		}
		var maxKey []byte
		var maxSeq uint64
		for _, s := range seqs {
			v := store.DecodeUint64(s)
			if maxKey == nil || v > maxSeq {
				maxKey, maxSeq = s, v
			}
		}
		content, err := txn.Get(store.TableSnapshotData, maxKey)
		if err != nil {
			return err
		}
		snap = models.Snapshot{DocID: docID, BaseSeq: maxSeq, Content: string(content)}
		found = true
		return nil
	})
	return snap, found, err
}

// ResetShadowDoc removes every (docID, seq) association from db's
// doc_ops index, used before applying a full snapshot-fallback sync so
// stale incremental ops don't linger alongside the fresh baseline.
func ResetShadowDoc(db *store.Store, docID models.DocID) error {
	return db.Update(func(txn *store.Txn) error {
		return txn.MultimapDeleteAll(store.TableDocOps, docID.Bytes())
	})
}

// PurgeDoc permanently removes every op and snapshot recorded for
// docID: the ledger_ops rows themselves (not just the doc_ops index
// ResetShadowDoc clears), the snapshot_data rows, and both multimap
// indices. Used by delete_doc to reclaim storage once a document is
// destroyed; the path<->DocID metadata binding is dropped separately
// by metadata.DeleteDoc (Trinity Isolation keeps the two concerns in
// separate packages).
func PurgeDoc(db *store.Store, docID models.DocID) error {
	return db.Update(func(txn *store.Txn) error {
		globalSeqs, err := txn.MultimapGet(store.TableDocOps, docID.Bytes())
		if err != nil {
			return err
		}
		for _, gs := range globalSeqs {
			if err := txn.Delete(store.TableLedgerOps, gs); err != nil {
				return err
			}
		}
		if err := txn.MultimapDeleteAll(store.TableDocOps, docID.Bytes()); err != nil {
			return err
		}

		snapSeqs, err := txn.MultimapGet(store.TableSnapshotIdx, docID.Bytes())
		if err != nil {
			return err
		}
		for _, s := range snapSeqs {
			if err := txn.Delete(store.TableSnapshotData, s); err != nil {
				return err
			}
		}
		return txn.MultimapDeleteAll(store.TableSnapshotIdx, docID.Bytes())
	})
}
