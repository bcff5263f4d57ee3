// Package metadata implements the bidirectional path<->DocID index and
// the inode->DocID rename-detection index, all mutated inside a single
// Store transaction so the bidirectionality invariant
// (path_to_docid[p] == d <=> docid_to_path[d] == p) never observes a
// half-applied update.
package metadata

import (
	"errors"
	"fmt"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
)

// Sentinel errors.
var (
	ErrNotFound      = errors.New("metadata: not found")
	ErrPathExists    = errors.New("metadata: path already has a document")
	ErrPathNotExists = errors.New("metadata: path has no document")
)

// CreateDocID allocates a fresh DocID for path. Fails with
// ErrPathExists if path already has one.
func CreateDocID(db *store.Store, path string) (models.DocID, error) {
	var id models.DocID
	err := db.Update(func(txn *store.Txn) error {
		exists, err := txn.Has(store.TablePathToDocID, []byte(path))
		if err != nil {
			return err
		}
		if exists {
			return ErrPathExists
		}
		id = models.NewDocID()
		if err := txn.Put(store.TablePathToDocID, []byte(path), id.Bytes()); err != nil {
			return err
		}
		return txn.Put(store.TableDocIDToPath, id.Bytes(), []byte(path))
	})
	if err != nil {
		return models.DocID{}, err
	}
	return id, nil
}

// GetDocID looks up the DocID bound to path.
func GetDocID(db *store.Store, path string) (models.DocID, bool, error) {
	var id models.DocID
	found := false
	err := db.View(func(txn *store.Txn) error {
		raw, err := txn.Get(store.TablePathToDocID, []byte(path))
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		copy(id[:], raw)
		found = true
		return nil
	})
	return id, found, err
}

// GetPathByDocID looks up the path currently bound to id.
func GetPathByDocID(db *store.Store, id models.DocID) (string, bool, error) {
	var path string
	found := false
	err := db.View(func(txn *store.Txn) error {
		raw, err := txn.Get(store.TableDocIDToPath, id.Bytes())
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		path = string(raw)
		found = true
		return nil
	})
	return path, found, err
}

// BindInode associates inode with id, for later rename-without-content
// change detection.
func BindInode(db *store.Store, inode models.FileNodeID, id models.DocID) error {
	return db.Update(func(txn *store.Txn) error {
		return txn.Put(store.TableInodeToDocID, inode.Bytes(), id.Bytes())
	})
}

// GetDocIDByInode looks up the DocID last bound to inode.
func GetDocIDByInode(db *store.Store, inode models.FileNodeID) (models.DocID, bool, error) {
	var id models.DocID
	found := false
	err := db.View(func(txn *store.Txn) error {
		raw, err := txn.Get(store.TableInodeToDocID, inode.Bytes())
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		copy(id[:], raw)
		found = true
		return nil
	})
	return id, found, err
}

// RenameDoc atomically moves the metadata entries for oldPath to
// newPath, preserving DocID. Fails if newPath already has a document.
func RenameDoc(db *store.Store, oldPath, newPath string) error {
	return db.Update(func(txn *store.Txn) error {
		rawID, err := txn.Get(store.TablePathToDocID, []byte(oldPath))
		if errors.Is(err, store.ErrNotFound) {
			return ErrPathNotExists
		}
		if err != nil {
			return err
		}
		exists, err := txn.Has(store.TablePathToDocID, []byte(newPath))
		if err != nil {
			return err
		}
		if exists {
			return ErrPathExists
		}

		if err := txn.Delete(store.TablePathToDocID, []byte(oldPath)); err != nil {
			return err
		}
		if err := txn.Put(store.TablePathToDocID, []byte(newPath), rawID); err != nil {
			return err
		}
		var id models.DocID
		copy(id[:], rawID)
		return txn.Put(store.TableDocIDToPath, id.Bytes(), []byte(newPath))
	})
}

// DeleteDoc removes every metadata row for path. The caller is
// responsible for also dropping the document's ops, snapshots, and
// tree-node metadata (Trinity Isolation keeps those concerns in
// separate packages).
func DeleteDoc(db *store.Store, path string) error {
	return db.Update(func(txn *store.Txn) error {
		rawID, err := txn.Get(store.TablePathToDocID, []byte(path))
		if errors.Is(err, store.ErrNotFound) {
			return ErrPathNotExists
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(store.TablePathToDocID, []byte(path)); err != nil {
			return err
		}
		return txn.Delete(store.TableDocIDToPath, rawID)
	})
}

// RenameFolder renames every path under oldPrefix to start with
// newPrefix instead, preserving each document's DocID.
func RenameFolder(db *store.Store, oldPrefix, newPrefix string) error {
	paths, err := listPathsUnderPrefix(db, oldPrefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		newPath := newPrefix + p[len(oldPrefix):]
		if err := RenameDoc(db, p, newPath); err != nil {
			return fmt.Errorf("metadata: rename folder %q -> %q: %w", oldPrefix, newPrefix, err)
		}
	}
	return nil
}

// DeleteFolder deletes every document whose path starts with prefix.
func DeleteFolder(db *store.Store, prefix string) error {
	paths, err := listPathsUnderPrefix(db, prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := DeleteDoc(db, p); err != nil {
			return err
		}
	}
	return nil
}

func listPathsUnderPrefix(db *store.Store, prefix string) ([]string, error) {
	var out []string
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TablePathToDocID, []byte(prefix), func(key, _ []byte) error {
			out = append(out, string(key))
			return nil
		})
	})
	return out, err
}

// ListDocs returns every (DocID, path) pair currently known to db.
func ListDocs(db *store.Store) ([]DocRef, error) {
	var out []DocRef
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TableDocIDToPath, nil, func(key, value []byte) error {
			var id models.DocID
			copy(id[:], key)
			out = append(out, DocRef{DocID: id, Path: string(value)})
			return nil
		})
	})
	return out, err
}

// DocRef pairs a DocID with its current path.
type DocRef struct {
	DocID models.DocID
	Path  string
}
