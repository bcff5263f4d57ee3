// Package watcher implements a thin, deterministic polling file-tree
// watcher: not a production filesystem watcher (spec.md's Non-goals
// keep the real one external), but a tiny helper usable from tests and
// CLI demos to drive ledger.Manager.ReconcileRename off real stat()
// calls without wiring inotify/kqueue/ReadDirectoryChangesW. Grounded
// on original_source/crates/core/src/watcher.rs's Watcher type,
// replacing its notify-debouncer event stream with a plain
// Poll-on-demand loop over the same rename-by-inode primitive.
package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/orneryd/deve-ledger/pkg/ledger"
	"github.com/orneryd/deve-ledger/pkg/models"
)

// Watcher polls root for regular files and reconciles each one's
// (device, inode) pair against the Ledger Manager's metadata.
type Watcher struct {
	root    string
	manager *ledger.Manager

	mu   sync.Mutex
	seen map[string]models.FileNodeID
}

// New returns a Watcher over root, reconciling documents through
// manager.
func New(root string, manager *ledger.Manager) *Watcher {
	return &Watcher{root: root, manager: manager, seen: make(map[string]models.FileNodeID)}
}

// Poll walks root once, reconciling every regular file whose inode
// wasn't already seen at its current path, and returns the relative
// paths it reconciled. Safe to call repeatedly; a production watcher
// would call this debounced from real filesystem notifications instead
// of on a timer.
func (w *Watcher) Poll() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var touched []string
	err := filepath.Walk(w.root, func(fullPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, fullPath)
		if err != nil {
			return err
		}
		inode, ok := fileNodeID(info)
		if !ok {
			return nil
		}
		if w.seen[rel] == inode {
			return nil
		}
		if _, _, _, err := w.manager.ReconcileRename(rel, inode); err != nil {
			return fmt.Errorf("watcher: reconcile %s: %w", rel, err)
		}
		w.seen[rel] = inode
		touched = append(touched, rel)
		return nil
	})
	return touched, err
}

// Run polls every interval until stop is closed, logging (not
// returning) any per-poll error so one bad stat() doesn't end the
// loop, matching the original watcher's per-event error handling.
func (w *Watcher) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := w.Poll(); err != nil {
				log.Printf("watcher: poll error: %v", err)
			}
		}
	}
}

func fileNodeID(info os.FileInfo) (models.FileNodeID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return models.FileNodeID{}, false
	}
	return models.NewFileNodeID(uint64(stat.Dev), stat.Ino), true
}
