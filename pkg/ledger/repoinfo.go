package ledger

import (
	"encoding/json"
	"errors"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
)

// readRepoInfo returns the single repo_metadata record, or (nil, nil)
// if the store has never been initialized.
func (m *Manager) readRepoInfo(db *store.Store) (*models.RepoInfo, error) {
	var info *models.RepoInfo
	err := db.View(func(txn *store.Txn) error {
		raw, err := txn.Get(store.TableRepoMetadata, []byte{0})
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var decoded models.RepoInfo
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		info = &decoded
		return nil
	})
	return info, err
}

func (m *Manager) writeRepoInfo(db *store.Store, info models.RepoInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		return txn.Put(store.TableRepoMetadata, []byte{0}, payload)
	})
}

// GetRepoURL returns the local repository's clone URL, if one was set
// at Init time.
func (m *Manager) GetRepoURL() (string, bool, error) {
	info, err := m.readRepoInfo(m.localStore)
	if err != nil {
		return "", false, err
	}
	if info == nil || info.URL == nil {
		return "", false, nil
	}
	return *info.URL, true, nil
}

// FindLocalRepoNameByURL reports whether the local repository's
// recorded clone URL matches url, returning its name if so. The
// Ledger Manager owns exactly one local repository per ledger
// directory, so this is a direct comparison rather than a scan.
func (m *Manager) FindLocalRepoNameByURL(url string) (string, bool, error) {
	repoURL, ok, err := m.GetRepoURL()
	if err != nil || !ok || repoURL != url {
		return "", false, err
	}
	return m.localRepoName, true, nil
}
