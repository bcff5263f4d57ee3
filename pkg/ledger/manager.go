// Package ledger implements the Ledger Manager: it opens the local
// authoritative store and lazily-cached per-peer shadow stores, routes
// every read/write by RepoType, and owns the maintenance operations
// (shadow reset, peer deletion) the rest of the system calls into.
//
// Grounded on original_source/crates/core/src/ledger/manager/*.rs,
// translated from RwLock<HashMap<...>> into a Go sync.RWMutex-guarded
// map, the same pattern NornicDB's SchemaManager uses to protect its
// constraint/index maps (pkg/storage/schema.go).
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/orneryd/deve-ledger/pkg/metadata"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
)

// Sentinel errors.
var (
	ErrRepoNotFound = errors.New("ledger: repository not found")
)

type shadowKey struct {
	Peer   models.PeerID
	RepoID models.RepoID
}

// Manager owns the local store and the lazily-opened shadow stores for
// every peer this node has synced with.
type Manager struct {
	ledgerDir     string
	snapshotDepth int
	localRepoName string
	localRepoID   models.RepoID
	localStore    *store.Store

	mu           sync.RWMutex // guards shadowStores only
	shadowStores map[shadowKey]*store.Store
}

// Init creates the ledger directory tree (if absent), opens the local
// store, and initializes repo metadata. repoName defaults to "default"
// and repoURL is optional.
func Init(ledgerDir string, snapshotDepth int, repoName, repoURL string) (*Manager, error) {
	if repoName == "" {
		repoName = "default"
	}

	localDir := filepath.Join(ledgerDir, "local")
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("ledger: create local dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(ledgerDir, "remotes"), 0o755); err != nil {
		return nil, fmt.Errorf("ledger: create remotes dir: %w", err)
	}

	localStoreDir := filepath.Join(localDir, repoName)
	db, err := store.Open(localStoreDir)
	if err != nil {
		return nil, fmt.Errorf("ledger: open local store: %w", err)
	}

	mgr := &Manager{
		ledgerDir:     ledgerDir,
		snapshotDepth: snapshotDepth,
		localRepoName: repoName,
		localStore:    db,
		shadowStores:  make(map[shadowKey]*store.Store),
	}

	info, err := mgr.readRepoInfo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if info == nil {
		id := models.NewRepoID()
		mgr.localRepoID = id
		var urlPtr *string
		if repoURL != "" {
			urlPtr = &repoURL
		}
		if err := mgr.writeRepoInfo(db, models.RepoInfo{UUID: id, Name: repoName, URL: urlPtr}); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		mgr.localRepoID = info.UUID
	}

	return mgr, nil
}

// Close releases the local store and every cached shadow store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, db := range m.shadowStores {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := m.localStore.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LedgerDir returns the root directory this manager was opened over.
func (m *Manager) LedgerDir() string { return m.ledgerDir }

// LocalRepoName returns the name of the local repository.
func (m *Manager) LocalRepoName() string { return m.localRepoName }

// LocalRepoID returns the UUID of the local repository.
func (m *Manager) LocalRepoID() models.RepoID { return m.localRepoID }

// SnapshotDepth returns the configured per-doc snapshot retention depth.
func (m *Manager) SnapshotDepth() int { return m.snapshotDepth }

// LocalStore exposes the local authoritative Store for collaborators
// that need direct access to concerns the Manager doesn't wrap itself
// (metadata paths, source control staging).
func (m *Manager) LocalStore() *store.Store { return m.localStore }

// resolve returns the Store backing repoType, opening (and caching) a
// shadow store on first access if needed.
func (m *Manager) resolve(repoType models.RepoType) (*store.Store, error) {
	if repoType.Kind == models.RepoLocal {
		return m.localStore, nil
	}
	return m.ensureShadowStore(repoType.Peer, repoType.RepoID)
}

func (m *Manager) ensureShadowStore(peer models.PeerID, repoID models.RepoID) (*store.Store, error) {
	key := shadowKey{Peer: peer, RepoID: repoID}

	m.mu.RLock()
	db, ok := m.shadowStores[key]
	m.mu.RUnlock()
	if ok {
		return db, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the write lock: another goroutine may have opened
	// it while we waited.
	if db, ok := m.shadowStores[key]; ok {
		return db, nil
	}

	dir := filepath.Join(m.ledgerDir, "remotes", peer.Filename(), repoID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ledger: create shadow dir: %w", err)
	}
	db, err := store.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("ledger: open shadow store %s/%s: %w", peer, repoID, err)
	}
	m.shadowStores[key] = db
	return db, nil
}

// ListDocs returns every (DocID, path) pair known to the store
// addressed by repoType. For a remote RepoType, paths are empty strings
// since shadow stores carry only ops/snapshots, not metadata (Trinity
// Isolation: metadata lives only in the local store).
func (m *Manager) ListDocs(repoType models.RepoType) ([]metadata.DocRef, error) {
	if repoType.Kind == models.RepoLocal {
		return metadata.ListDocs(m.localStore)
	}
	db, err := m.resolve(repoType)
	if err != nil {
		return nil, err
	}
	docIDs, err := distinctDocIDs(db)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.DocRef, len(docIDs))
	for i, id := range docIDs {
		out[i] = metadata.DocRef{DocID: id}
	}
	return out, nil
}

// ListLocalDocs is a convenience wrapper for the common case of
// listing the local repository's documents.
func (m *Manager) ListLocalDocs() ([]metadata.DocRef, error) {
	return metadata.ListDocs(m.localStore)
}

func distinctDocIDs(db *store.Store) ([]models.DocID, error) {
	seen := make(map[models.DocID]struct{})
	var out []models.DocID
	err := db.View(func(txn *store.Txn) error {
		return txn.ScanPrefix(store.TableDocOps, nil, func(key, _ []byte) error {
			// doc_ops keys are docID(16) + 0x00 + globalSeq(8)
			if len(key) < 16 {
				return nil
			}
			var id models.DocID
			copy(id[:], key[:16])
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
			return nil
		})
	})
	return out, err
}
