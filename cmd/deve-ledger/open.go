package main

import (
	"fmt"

	"github.com/orneryd/deve-ledger/pkg/cryptobox"
	"github.com/orneryd/deve-ledger/pkg/identity"
	"github.com/orneryd/deve-ledger/pkg/ledger"
)

// session bundles everything a CLI command needs against one ledger
// directory: the Ledger Manager, this node's signing identity, and its
// repo-wide symmetric key.
type session struct {
	Manager *ledger.Manager
	Keys    identity.KeyPair
	RepoKey cryptobox.RepoKey
}

func openSession(ledgerDir string) (*session, error) {
	mgr, err := ledger.Init(ledgerDir, defaultConfig.Ledger.SnapshotDepth, defaultConfig.Ledger.RepoName, "")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	keys, err := identity.LoadOrGenerate(ledgerDir)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("load identity: %w", err)
	}
	repoKey, err := cryptobox.LoadOrGenerateRepoKey(ledgerDir)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("load repo key: %w", err)
	}
	return &session{Manager: mgr, Keys: keys, RepoKey: repoKey}, nil
}

func (s *session) Close() {
	s.Manager.Close()
}
