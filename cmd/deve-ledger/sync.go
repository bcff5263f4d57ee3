package main

import (
	"fmt"

	"github.com/orneryd/deve-ledger/pkg/identity"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/syncengine"
	"github.com/orneryd/deve-ledger/pkg/vvector"
	"github.com/spf13/cobra"
)

// newSyncCmd wires a loopback demo: two local ledger directories
// exchange a handshake and one pull/apply round over in-process calls,
// with no network hop. A real deployment drives the same Engine calls
// from pkg/transport's WebSocket frames instead.
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [local-dir] [peer-dir]",
		Short: "Demonstrate a handshake + pull/apply sync round between two local ledgers",
		Args:  cobra.ExactArgs(2),
		RunE:  runSyncDemo,
	}
	return cmd
}

func runSyncDemo(cmd *cobra.Command, args []string) error {
	localDir, peerDir := args[0], args[1]

	local, err := openSession(localDir)
	if err != nil {
		return fmt.Errorf("open local ledger: %w", err)
	}
	defer local.Close()

	peer, err := openSession(peerDir)
	if err != nil {
		return fmt.Errorf("open peer ledger: %w", err)
	}
	defer peer.Close()

	localPeerID := local.Keys.PeerID()
	peerPeerID := peer.Keys.PeerID()

	localEngine := syncengine.New(localPeerID, local.Manager, syncengine.Auto)
	localEngine.RepoKey = &local.RepoKey

	peerEngine := syncengine.New(peerPeerID, peer.Manager, syncengine.Auto)
	peerEngine.RepoKey = &local.RepoKey // both sides must share one RepoKey to decrypt each other's ops

	maxSeq, err := peer.Manager.GetMaxSeq(models.Local(peer.Manager.LocalRepoID()))
	if err != nil {
		return err
	}
	peerVector := []identity.VectorEntry{{Peer: peerPeerID, Seq: maxSeq}}
	payload, err := identity.CanonicalHandshakePayload(peerPeerID, peerVector)
	if err != nil {
		return err
	}
	sig := peer.Keys.Sign(payload)

	result, err := localEngine.Handshake(peerPeerID, peer.Keys.Public, peerVector, sig, identity.Verify)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	fmt.Printf("handshake ok: %d range(s) to request from %s\n", len(result.ToRequest), peerPeerID)

	docs, err := peer.Manager.ListLocalDocs()
	if err != nil {
		return err
	}

	for _, rng := range result.ToRequest {
		for _, d := range docs {
			pullResult, err := peerEngine.Pull(d.DocID, peer.Manager.LocalRepoID(), vvector.Range{
				Peer: rng.Peer, Start: rng.Start, End: rng.End,
			})
			if err != nil {
				return fmt.Errorf("pull: %w", err)
			}
			if len(pullResult.Ops) == 0 {
				continue
			}
			if err := localEngine.Apply(peer.Manager.LocalRepoID(), pullResult.Ops, pullResult.IsSnapshot); err != nil {
				return fmt.Errorf("apply: %w", err)
			}
			fmt.Printf("applied %d op(s) for %s from %s\n", len(pullResult.Ops), d.Path, rng.Peer)
		}
	}

	return nil
}
