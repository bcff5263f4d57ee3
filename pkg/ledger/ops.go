package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/oplog"
)

// AppendLocalOp appends an op authored locally: the next per-(peer,doc)
// seq is computed against the local store and the operation is given a
// fresh GlobalSeq there. Returns the assigned (GlobalSeq, seq).
func (m *Manager) AppendLocalOp(docID models.DocID, peerID models.PeerID, op models.Op, timestampMs int64) (uint64, uint64, error) {
	return oplog.AppendGeneratedOp(m.localStore, docID, peerID, func(seq uint64) models.LedgerEntry {
		return models.LedgerEntry{
			DocID:       docID,
			Op:          op,
			TimestampMs: timestampMs,
			PeerID:      peerID,
			Seq:         seq,
		}
	})
}

// AppendGeneratedOp is an alias for AppendLocalOp kept distinct for
// call-site clarity where the caller builds the op from a computed
// diff rather than a single user edit; behavior is identical.
func (m *Manager) AppendGeneratedOp(docID models.DocID, peerID models.PeerID, op models.Op, timestampMs int64) (uint64, uint64, error) {
	return m.AppendLocalOp(docID, peerID, op, timestampMs)
}

// AppendRemoteOp appends entry, whose Seq was already assigned by its
// authoring peer, into the shadow store for (entry.PeerID, repoID).
// The remote seq is preserved verbatim; only GlobalSeq is freshly
// assigned, local to the shadow store.
func (m *Manager) AppendRemoteOp(repoID models.RepoID, entry models.LedgerEntry) (uint64, error) {
	db, err := m.ensureShadowStore(entry.PeerID, repoID)
	if err != nil {
		return 0, err
	}
	return oplog.AppendOp(db, entry)
}

// GetOps returns every op recorded for docID in the store addressed by
// repoType, ascending by GlobalSeq.
func (m *Manager) GetOps(repoType models.RepoType, docID models.DocID) ([]oplog.Entry, error) {
	db, err := m.resolve(repoType)
	if err != nil {
		return nil, err
	}
	return oplog.GetOpsFromDB(db, docID)
}

// GetOpsAfter returns every op for docID in repoType's store whose
// GlobalSeq exceeds baseSeq.
func (m *Manager) GetOpsAfter(repoType models.RepoType, docID models.DocID, baseSeq uint64) ([]oplog.Entry, error) {
	db, err := m.resolve(repoType)
	if err != nil {
		return nil, err
	}
	return oplog.GetOpsFromDBAfter(db, docID, baseSeq)
}

// GetMaxSeq returns the high-water GlobalSeq mark of the store
// addressed by repoType.
func (m *Manager) GetMaxSeq(repoType models.RepoType) (uint64, error) {
	db, err := m.resolve(repoType)
	if err != nil {
		return 0, err
	}
	return oplog.GetMaxSeq(db)
}

// SaveSnapshot persists content as docID's base state at baseSeq in the
// store addressed by repoType, pruning beyond the manager's configured
// snapshot depth.
func (m *Manager) SaveSnapshot(repoType models.RepoType, docID models.DocID, baseSeq uint64, content string) error {
	db, err := m.resolve(repoType)
	if err != nil {
		return err
	}
	return oplog.SaveSnapshot(db, docID, baseSeq, content, m.snapshotDepth)
}

// LoadLatestSnapshot returns the newest snapshot for docID in the store
// addressed by repoType.
func (m *Manager) LoadLatestSnapshot(repoType models.RepoType, docID models.DocID) (models.Snapshot, bool, error) {
	db, err := m.resolve(repoType)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	return oplog.LoadLatestSnapshot(db, docID)
}

// ResetShadowDoc clears the doc_ops index for docID in the shadow store
// for (peer, repoID), ahead of a snapshot-fallback sync replacing the
// accumulated incremental history with a fresh baseline.
func (m *Manager) ResetShadowDoc(peer models.PeerID, repoID models.RepoID, docID models.DocID) error {
	db, err := m.ensureShadowStore(peer, repoID)
	if err != nil {
		return err
	}
	return oplog.ResetShadowDoc(db, docID)
}

// DeletePeerBranch closes and removes every shadow store held for peer
// across all of its repos. Idempotent: deleting a peer with no shadow
// stores open is a no-op, matching the original's delete_peer_branch
// semantics (original_source/crates/core/src/ledger/manager/core.rs).
func (m *Manager) DeletePeerBranch(peer models.PeerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, db := range m.shadowStores {
		if key.Peer != peer {
			continue
		}
		if err := db.Close(); err != nil {
			return fmt.Errorf("ledger: close shadow store for peer %s: %w", peer, err)
		}
		delete(m.shadowStores, key)
	}

	peerDir := filepath.Join(m.ledgerDir, "remotes", peer.Filename())
	if err := os.RemoveAll(peerDir); err != nil {
		return fmt.Errorf("ledger: remove peer branch %s: %w", peer, err)
	}
	return nil
}
