// Package sourcectl implements the lightweight source-control façade
// spec.md §4.10 layers over the same Store: a staging set, a commit
// log, and a per-document snapshot-at-last-commit index, so "changed
// since last commit" is a plain comparison rather than a second
// ledger. Grounded on original_source/crates/core/src/ledger/manager
// commit tables and the teacher's JSON-record storage convention
// (pkg/storage/badger.go's encodeNode/encodeEdge).
package sourcectl

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
)

// Sentinel errors.
var (
	ErrNothingStaged = errors.New("sourcectl: no files staged")
)

// ChangeKind classifies one document's status against the last commit.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one document's status in ListChanges.
type Change struct {
	DocID models.DocID
	Path  string
	Kind  ChangeKind
}

// CurrentDoc is what the caller supplies per document when computing
// changes or creating a commit: its present path (empty if deleted)
// and reconstructed content (empty if deleted).
type CurrentDoc struct {
	DocID   models.DocID
	Path    string
	Content string
}

// Resolver resolves a staged path to its current (DocID, content), or
// reports absence (the file was deleted since staging). On ok=false
// the caller must still populate docID whenever the path's DocID is
// known (e.g. from a prior commit snapshot), so CreateCommitWithSnapshots
// can purge that document's stale snapshot rows; a zero DocID means
// the path never had one, in which case there is nothing to purge.
type Resolver func(path string) (docID models.DocID, content string, ok bool)

// DocIDForSnapshotPath reverse-looks-up the DocID last committed under
// path, for resolving a staged path whose document has since been
// deleted (metadata.DeleteDoc already removed the forward path->DocID
// index by the time commit runs).
func DocIDForSnapshotPath(db *store.Store, path string) (models.DocID, bool, error) {
	var id models.DocID
	found := false
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TableCommitSnapshotPaths, nil, func(key, value []byte) error {
			if found || string(value) != path {
				return nil
			}
			copy(id[:], key)
			found = true
			return nil
		})
	})
	return id, found, err
}

// StageFile marks path as staged for the next commit.
func StageFile(db *store.Store, path string, timestampMs int64) error {
	return db.Update(func(txn *store.Txn) error {
		return txn.Put(store.TableStagedFiles, []byte(path), store.EncodeUint64(uint64(timestampMs)))
	})
}

// UnstageFile removes path from the staging set. No error if absent.
func UnstageFile(db *store.Store, path string) error {
	return db.Update(func(txn *store.Txn) error {
		return txn.Delete(store.TableStagedFiles, []byte(path))
	})
}

// ListStaged returns every currently staged path, sorted.
func ListStaged(db *store.Store) ([]string, error) {
	var out []string
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TableStagedFiles, nil, func(key, _ []byte) error {
			out = append(out, string(key))
			return nil
		})
	})
	sort.Strings(out)
	return out, err
}

// CreateCommitWithSnapshots requires a non-empty staging set. For each
// staged path it calls resolve; a present (DocID, content) writes the
// commit snapshot, an absent resolution purges any prior snapshot for
// that DocID so ListChanges stops reporting it. Staging is cleared on
// success.
func CreateCommitWithSnapshots(db *store.Store, message string, timestampMs int64, resolve Resolver) (models.CommitRecord, error) {
	staged, err := ListStaged(db)
	if err != nil {
		return models.CommitRecord{}, err
	}
	if len(staged) == 0 {
		return models.CommitRecord{}, ErrNothingStaged
	}

	var record models.CommitRecord
	err = db.Update(func(txn *store.Txn) error {
		docCount := 0
		for _, path := range staged {
			docID, content, ok := resolve(path)
			if !ok {
				if err := txn.Delete(store.TableCommitSnapshots, docID.Bytes()); err != nil {
					return err
				}
				if err := txn.Delete(store.TableCommitSnapshotPaths, docID.Bytes()); err != nil {
					return err
				}
				continue
			}
			if err := txn.Put(store.TableCommitSnapshots, docID.Bytes(), []byte(content)); err != nil {
				return err
			}
			if err := txn.Put(store.TableCommitSnapshotPaths, docID.Bytes(), []byte(path)); err != nil {
				return err
			}
			docCount++
		}

		lastOp, hasOps, err := txn.LastKey(store.TableLedgerOps)
		if err != nil {
			return err
		}
		var ledgerSeq uint64
		if hasOps {
			ledgerSeq = store.DecodeUint64(lastOp)
		}

		record = models.CommitRecord{
			CommitID:        uuid.New().String(),
			Message:         message,
			TimestampMs:     timestampMs,
			DocCount:        docCount,
			LedgerSeqAtTime: ledgerSeq,
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("sourcectl: encode commit: %w", err)
		}
		if err := txn.Put(store.TableCommits, []byte(record.CommitID), payload); err != nil {
			return err
		}

		ordinal, err := nextCommitOrdinal(txn)
		if err != nil {
			return err
		}
		if err := txn.Put(store.TableCommitsOrder, store.EncodeUint64(ordinal), []byte(record.CommitID)); err != nil {
			return err
		}

		for _, path := range staged {
			if err := txn.Delete(store.TableStagedFiles, []byte(path)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.CommitRecord{}, err
	}
	return record, nil
}

func nextCommitOrdinal(txn *store.Txn) (uint64, error) {
	lastKey, ok, err := txn.LastKey(store.TableCommitsOrder)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return store.DecodeUint64(lastKey) + 1, nil
}

// ListCommits returns up to limit commits, most recent first.
func ListCommits(db *store.Store, limit int) ([]models.CommitRecord, error) {
	type ordinalID struct {
		ordinal uint64
		id      string
	}
	var pairs []ordinalID
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TableCommitsOrder, nil, func(key, value []byte) error {
			pairs = append(pairs, ordinalID{ordinal: store.DecodeUint64(key), id: string(value)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ordinal > pairs[j].ordinal })
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}

	out := make([]models.CommitRecord, 0, len(pairs))
	err = db.View(func(txn *store.Txn) error {
		for _, p := range pairs {
			raw, err := txn.Get(store.TableCommits, []byte(p.id))
			if err != nil {
				return err
			}
			var rec models.CommitRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// ListChanges compares every currently known document against its
// last-committed snapshot: Added (no snapshot, has content), Modified
// (both present and differ), Deleted (snapshot present, no current
// doc at that id).
func ListChanges(db *store.Store, current []CurrentDoc) ([]Change, error) {
	var changes []Change

	err := db.View(func(txn *store.Txn) error {
		currentByID := make(map[models.DocID]CurrentDoc, len(current))
		for _, c := range current {
			currentByID[c.DocID] = c
		}

		for _, c := range current {
			raw, err := txn.Get(store.TableCommitSnapshots, c.DocID.Bytes())
			if errors.Is(err, store.ErrNotFound) {
				changes = append(changes, Change{DocID: c.DocID, Path: c.Path, Kind: Added})
				continue
			}
			if err != nil {
				return err
			}
			if string(raw) != c.Content {
				changes = append(changes, Change{DocID: c.DocID, Path: c.Path, Kind: Modified})
			}
		}

		return txn.ScanPrefix(store.TableCommitSnapshots, nil, func(key, _ []byte) error {
			var docID models.DocID
			copy(docID[:], key)
			if _, stillPresent := currentByID[docID]; stillPresent {
				return nil
			}
			path, err := txn.Get(store.TableCommitSnapshotPaths, docID.Bytes())
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			changes = append(changes, Change{DocID: docID, Path: string(path), Kind: Deleted})
			return nil
		})
	})
	return changes, err
}
