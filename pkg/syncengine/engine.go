// Package syncengine implements one peer session's side of the sync
// protocol: handshake, pull, apply, and the snapshot-fallback path.
// Grounded on original_source/crates/core/src/sync/engine/mod.rs,
// handshake.rs, and transfer/{apply,snapshot}.rs. One Engine is owned
// by exactly one peer session and run cooperatively — no internal
// goroutine fan-out, matching spec.md §4.8's "single-threaded
// cooperative per remote connection" model and the teacher's
// single-writer-per-connection pattern in pkg/server/server.go.
package syncengine

import (
	"fmt"
	"log"
	"sort"

	"github.com/orneryd/deve-ledger/pkg/cryptobox"
	"github.com/orneryd/deve-ledger/pkg/identity"
	"github.com/orneryd/deve-ledger/pkg/ledger"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/reconstruct"
	"github.com/orneryd/deve-ledger/pkg/vvector"
)

// SyncMode selects how a session handles incoming ops.
type SyncMode int

const (
	// Auto applies remote ops immediately.
	Auto SyncMode = iota
	// Manual buffers remote ops in PendingOpsBuffer for user review.
	Manual
)

// PendingOp is one decrypted remote op awaiting user confirmation in
// Manual mode.
type PendingOp struct {
	Peer  models.PeerID
	Entry models.LedgerEntry
}

// Engine owns one peer session's handshake/pull/apply state.
type Engine struct {
	LocalPeerID   models.PeerID
	RemotePeerID  models.PeerID
	Repo          *ledger.Manager
	VersionVector *vvector.VersionVector
	Mode          SyncMode
	RepoKey       *cryptobox.RepoKey // nil until RequestKey/KeyProvide exchange completes

	// PendingOpsBuffer holds remote ops received under Manual mode,
	// keyed by originating peer, until ConfirmMerge or DiscardPending.
	// Owned by exactly one Engine; never shared (spec.md §5).
	PendingOpsBuffer map[models.PeerID][]models.LedgerEntry
}

// New constructs an Engine for a single remote peer session.
func New(localPeerID models.PeerID, repo *ledger.Manager, mode SyncMode) *Engine {
	return &Engine{
		LocalPeerID:      localPeerID,
		Repo:             repo,
		VersionVector:    vvector.New(),
		Mode:             mode,
		PendingOpsBuffer: make(map[models.PeerID][]models.LedgerEntry),
	}
}

// HandshakeResult is what a received SyncHello resolves to: the ranges
// to pull from the remote and the ranges the remote still needs from
// us, plus whether incoming ops should auto-apply.
type HandshakeResult struct {
	ToSend    []vvector.Range
	ToRequest []vvector.Range
	AutoApply bool
}

// Handshake verifies a received SyncHello and computes what each side
// needs from the other. peerID and pubKey come from the wire message;
// vector is the remote's advertised VersionVector entries; signature
// is over CanonicalHandshakePayload(peerID, vector).
func (e *Engine) Handshake(peerID models.PeerID, pubKeyRaw []byte, vectorEntries []identity.VectorEntry, signature []byte, verify func(pub, msg, sig []byte) bool) (HandshakeResult, error) {
	if derived := models.PeerIDFromPublicKey(pubKeyRaw); derived != peerID {
		return HandshakeResult{}, fmt.Errorf("syncengine: peer id mismatch: claimed %s, derived %s", peerID, derived)
	}

	payload, err := identity.CanonicalHandshakePayload(peerID, vectorEntries)
	if err != nil {
		return HandshakeResult{}, fmt.Errorf("syncengine: build canonical payload: %w", err)
	}
	if !verify(pubKeyRaw, payload, signature) {
		return HandshakeResult{}, fmt.Errorf("syncengine: handshake signature verification failed")
	}

	remoteVV := vvector.New()
	for _, ve := range vectorEntries {
		remoteVV.Update(ve.Peer, ve.Seq)
	}

	toSend, toRequest := e.VersionVector.Diff(remoteVV)
	e.RemotePeerID = peerID

	return HandshakeResult{
		ToSend:    toSend,
		ToRequest: toRequest,
		AutoApply: e.Mode == Auto,
	}, nil
}

// snapshotFallbackThreshold is the requested-range length above which
// Pull sends a full reconstruction instead of the incremental ops
// (spec.md §4.8's "requested range length exceeds a threshold").
const snapshotFallbackThreshold = 500

// PullResult is what Pull returns for one requested range: either the
// encrypted incremental ops, or a single synthetic snapshot op when
// the range was large enough to trigger the fallback.
type PullResult struct {
	Peer       models.PeerID
	RepoID     models.RepoID
	DocID      models.DocID
	Ops        []cryptobox.EncryptedOp
	IsSnapshot bool
}

// Pull serves a SyncRequest range: the remote wants ops authored by
// rng.Peer for docID in [rng.Start, rng.End). Falls back to a
// synthetic full-content snapshot when the range is large.
func (e *Engine) Pull(docID models.DocID, repoID models.RepoID, rng vvector.Range) (PullResult, error) {
	if e.RepoKey == nil {
		return PullResult{}, fmt.Errorf("syncengine: pull requires a RepoKey")
	}

	local := models.Local(repoID)
	if rng.End-rng.Start > snapshotFallbackThreshold {
		return e.pullSnapshot(local, docID, rng.Peer, repoID)
	}

	// rng's [Start,End) bounds are expressed in the author's per-doc
	// seq space, not store-local GlobalSeq, so the whole doc history is
	// walked and filtered by (PeerID, Seq) rather than sliced by
	// GlobalSeq (see vvector.Range doc comment).
	entries, err := e.Repo.GetOps(local, docID)
	if err != nil {
		return PullResult{}, err
	}

	var encrypted []cryptobox.EncryptedOp
	for _, entry := range entries {
		le := entry.LedgerEntry
		if le.PeerID != rng.Peer || le.Seq < rng.Start || le.Seq >= rng.End {
			continue
		}
		enc, err := e.RepoKey.Encrypt(le, le.Seq)
		if err != nil {
			return PullResult{}, err
		}
		encrypted = append(encrypted, enc)
	}

	return PullResult{Peer: rng.Peer, RepoID: repoID, DocID: docID, Ops: encrypted}, nil
}

func (e *Engine) pullSnapshot(repoType models.RepoType, docID models.DocID, authorPeer models.PeerID, repoID models.RepoID) (PullResult, error) {
	entries, err := e.Repo.GetOps(repoType, docID)
	if err != nil {
		return PullResult{}, err
	}
	ledgerEntries := make([]models.LedgerEntry, len(entries))
	var maxSeq uint64
	for i, entry := range entries {
		ledgerEntries[i] = entry.LedgerEntry
		if entry.LedgerEntry.PeerID == authorPeer && entry.LedgerEntry.Seq > maxSeq {
			maxSeq = entry.LedgerEntry.Seq
		}
	}
	content := reconstruct.ReconstructContent(ledgerEntries)

	snapshotEntry := models.LedgerEntry{
		DocID:  docID,
		Op:     models.Insert(0, content),
		PeerID: authorPeer,
		Seq:    maxSeq,
	}
	enc, err := e.RepoKey.Encrypt(snapshotEntry, maxSeq)
	if err != nil {
		return PullResult{}, err
	}
	return PullResult{Peer: authorPeer, RepoID: repoID, DocID: docID, Ops: []cryptobox.EncryptedOp{enc}, IsSnapshot: true}, nil
}

// Apply handles a received SyncPush: decrypts each op and, depending
// on Mode, either writes it straight through (Auto) or buffers it for
// review (Manual). Logs and skips the entire push if no RepoKey has
// been established yet, matching spec.md §4.8's "require RepoKey; else
// skip with a warning log."
func (e *Engine) Apply(repoID models.RepoID, ops []cryptobox.EncryptedOp, isSnapshot bool) error {
	if e.RepoKey == nil {
		log.Printf("syncengine: dropping SyncPush from %s: no RepoKey established", e.RemotePeerID)
		return nil
	}

	decoded := make([]models.LedgerEntry, 0, len(ops))
	for _, enc := range ops {
		entry, err := e.RepoKey.Decrypt(enc)
		if err != nil {
			return fmt.Errorf("syncengine: decrypt op: %w", err)
		}
		decoded = append(decoded, entry)
	}

	if e.Mode == Manual {
		for _, entry := range decoded {
			e.PendingOpsBuffer[entry.PeerID] = append(e.PendingOpsBuffer[entry.PeerID], entry)
		}
		return nil
	}

	return e.applyAuto(repoID, decoded, isSnapshot)
}

func (e *Engine) applyAuto(repoID models.RepoID, decoded []models.LedgerEntry, isSnapshot bool) error {
	maxSeqByPeer := make(map[models.PeerID]uint64)

	if isSnapshot {
		for _, entry := range decoded {
			if err := e.Repo.ResetShadowDoc(entry.PeerID, repoID, entry.DocID); err != nil {
				return fmt.Errorf("syncengine: reset shadow doc before snapshot apply: %w", err)
			}
		}
	}

	for _, entry := range decoded {
		if _, err := e.Repo.AppendRemoteOp(repoID, entry); err != nil {
			return fmt.Errorf("syncengine: append remote op: %w", err)
		}
		if entry.Seq > maxSeqByPeer[entry.PeerID] {
			maxSeqByPeer[entry.PeerID] = entry.Seq
		}
	}

	for peer, seq := range maxSeqByPeer {
		e.VersionVector.Update(peer, seq)
	}
	return nil
}

// ConfirmMerge drains PendingOpsBuffer through the Auto apply path.
func (e *Engine) ConfirmMerge(repoID models.RepoID) error {
	all := e.flattenPending()
	e.PendingOpsBuffer = make(map[models.PeerID][]models.LedgerEntry)
	return e.applyAuto(repoID, all, false)
}

// DiscardPending empties PendingOpsBuffer without applying anything.
func (e *Engine) DiscardPending() {
	e.PendingOpsBuffer = make(map[models.PeerID][]models.LedgerEntry)
}

func (e *Engine) flattenPending() []models.LedgerEntry {
	peers := make([]models.PeerID, 0, len(e.PendingOpsBuffer))
	for p := range e.PendingOpsBuffer {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })

	var out []models.LedgerEntry
	for _, p := range peers {
		out = append(out, e.PendingOpsBuffer[p]...)
	}
	return out
}
