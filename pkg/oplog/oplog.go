// Package oplog implements the append-only operation log: writing
// LedgerEntry records into a Store's ledger_ops table, indexing them
// per-document, and folding ranges back out for reconstruction and
// sync. It is the Go analog of the original ledger/ops.rs module,
// generalized to the Store façade in pkg/store.
package oplog

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
)

// Entry pairs a LedgerEntry with the GlobalSeq it was assigned on
// append to the store it was read from.
type Entry struct {
	GlobalSeq uint64
	LedgerEntry models.LedgerEntry
}

// AppendOp appends entry to db, assigning it the next GlobalSeq. The
// caller has already decided entry.Seq (used by append_remote_op,
// which must preserve the remote's seq verbatim).
func AppendOp(db *store.Store, entry models.LedgerEntry) (uint64, error) {
	var newSeq uint64
	err := db.Update(func(txn *store.Txn) error {
		last, err := lastGlobalSeq(txn)
		if err != nil {
			return err
		}
		newSeq = last + 1

		payload, err := encodeEntry(entry)
		if err != nil {
			return fmt.Errorf("oplog: encode entry: %w", err)
		}
		if err := txn.Put(store.TableLedgerOps, store.EncodeUint64(newSeq), payload); err != nil {
			return err
		}
		return txn.MultimapInsert(store.TableDocOps, entry.DocID.Bytes(), store.EncodeUint64(newSeq))
	})
	if err != nil {
		return 0, err
	}
	return newSeq, nil
}

// AppendGeneratedOp atomically reads the author's highest seq for
// docID, calls build(nextSeq) to materialize the entry, and appends it
// with a freshly assigned GlobalSeq. Returns (GlobalSeq, seq).
func AppendGeneratedOp(db *store.Store, docID models.DocID, peerID models.PeerID, build func(seq uint64) models.LedgerEntry) (uint64, uint64, error) {
	var globalSeq, seq uint64
	err := db.Update(func(txn *store.Txn) error {
		lastSeq, err := highestSeqForPeerDoc(txn, docID, peerID)
		if err != nil {
			return err
		}
		seq = lastSeq + 1
		entry := build(seq)
		entry.DocID = docID
		entry.PeerID = peerID
		entry.Seq = seq

		lastGlobal, err := lastGlobalSeq(txn)
		if err != nil {
			return err
		}
		globalSeq = lastGlobal + 1

		payload, err := encodeEntry(entry)
		if err != nil {
			return fmt.Errorf("oplog: encode entry: %w", err)
		}
		if err := txn.Put(store.TableLedgerOps, store.EncodeUint64(globalSeq), payload); err != nil {
			return err
		}
		return txn.MultimapInsert(store.TableDocOps, docID.Bytes(), store.EncodeUint64(globalSeq))
	})
	if err != nil {
		return 0, 0, err
	}
	return globalSeq, seq, nil
}

// highestSeqForPeerDoc scans the doc's ops for the greatest seq
// authored by peerID, or 0 if none.
func highestSeqForPeerDoc(txn *store.Txn, docID models.DocID, peerID models.PeerID) (uint64, error) {
	globalSeqs, err := txn.MultimapGet(store.TableDocOps, docID.Bytes())
	if err != nil {
		return 0, err
	}
	var max uint64
	for _, gs := range globalSeqs {
		raw, err := txn.Get(store.TableLedgerOps, gs)
		if err != nil {
			return 0, err
		}
		entry, err := decodeEntry(raw)
		if err != nil {
			return 0, err
		}
		if entry.PeerID == peerID && entry.Seq > max {
			max = entry.Seq
		}
	}
	return max, nil
}

func lastGlobalSeq(txn *store.Txn) (uint64, error) {
	key, ok, err := txn.LastKey(store.TableLedgerOps)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return store.DecodeUint64(key), nil
}

// GetMaxSeq returns the last GlobalSeq written to db, or 0.
func GetMaxSeq(db *store.Store) (uint64, error) {
	var max uint64
	err := db.View(func(txn *store.Txn) error {
		var err error
		max, err = lastGlobalSeq(txn)
		return err
	})
	return max, err
}

// GetOpsFromDB returns every op recorded for docID, ascending by
// GlobalSeq.
func GetOpsFromDB(db *store.Store, docID models.DocID) ([]Entry, error) {
	var out []Entry
	err := db.View(func(txn *store.Txn) error {
		globalSeqs, err := txn.MultimapGet(store.TableDocOps, docID.Bytes())
		if err != nil {
			return err
		}
		for _, gs := range globalSeqs {
			raw, err := txn.Get(store.TableLedgerOps, gs)
			if err != nil {
				return err
			}
			entry, err := decodeEntry(raw)
			if err != nil {
				return err
			}
			out = append(out, Entry{GlobalSeq: store.DecodeUint64(gs), LedgerEntry: entry})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GlobalSeq < out[j].GlobalSeq })
	return out, nil
}

// GetOpsFromDBAfter returns every op for docID whose GlobalSeq exceeds
// baseSeq, ascending.
func GetOpsFromDBAfter(db *store.Store, docID models.DocID, baseSeq uint64) ([]Entry, error) {
	all, err := GetOpsFromDB(db, docID)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, e := range all {
		if e.GlobalSeq > baseSeq {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetOpsInRange returns every op with GlobalSeq in [start, end]
// (inclusive), regardless of document.
func GetOpsInRange(db *store.Store, start, end uint64) ([]Entry, error) {
	var out []Entry
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanRange(store.TableLedgerOps, store.EncodeUint64(start), store.EncodeUint64(end), func(key, value []byte) error {
			entry, err := decodeEntry(value)
			if err != nil {
				return err
			}
			out = append(out, Entry{GlobalSeq: store.DecodeUint64(key), LedgerEntry: entry})
			return nil
		})
	})
	return out, err
}

// encodeEntry serializes entry with encoding/json, the same
// serialization NornicDB's badger engine uses for nodes and edges.
func encodeEntry(entry models.LedgerEntry) ([]byte, error) {
	return json.Marshal(entry)
}
