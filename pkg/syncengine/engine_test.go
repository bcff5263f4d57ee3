package syncengine

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/cryptobox"
	"github.com/orneryd/deve-ledger/pkg/identity"
	"github.com/orneryd/deve-ledger/pkg/ledger"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/vvector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeRejectsBadSignature(t *testing.T) {
	dir := t.TempDir()
	mgr, err := ledger.Init(dir, 3, "", "")
	require.NoError(t, err)
	defer mgr.Close()

	kp, err := identity.Generate()
	require.NoError(t, err)

	e := New("local-peer", mgr, Auto)
	_, err = e.Handshake(kp.PeerID(), kp.Public, nil, []byte("not-a-real-signature"), identity.Verify)
	assert.Error(t, err)
}

func TestHandshakeComputesDiff(t *testing.T) {
	dir := t.TempDir()
	mgr, err := ledger.Init(dir, 3, "", "")
	require.NoError(t, err)
	defer mgr.Close()

	kp, err := identity.Generate()
	require.NoError(t, err)
	remotePeer := kp.PeerID()

	e := New("local-peer", mgr, Auto)
	e.VersionVector.Update(remotePeer, 5)

	vector := []identity.VectorEntry{{Peer: remotePeer, Seq: 2}}
	payload, err := identity.CanonicalHandshakePayload(remotePeer, vector)
	require.NoError(t, err)
	sig := kp.Sign(payload)

	result, err := e.Handshake(remotePeer, kp.Public, vector, sig, identity.Verify)
	require.NoError(t, err)
	assert.True(t, result.AutoApply)
	require.Len(t, result.ToSend, 1)
	assert.Equal(t, remotePeer, result.ToSend[0].Peer)
	assert.Equal(t, uint64(3), result.ToSend[0].Start)
	assert.Equal(t, uint64(6), result.ToSend[0].End)
	assert.Empty(t, result.ToRequest)
}

func TestPullAndApplyRoundTrip(t *testing.T) {
	aliceDir, bobDir := t.TempDir(), t.TempDir()
	alice, err := ledger.Init(aliceDir, 3, "", "")
	require.NoError(t, err)
	defer alice.Close()
	bob, err := ledger.Init(bobDir, 3, "", "")
	require.NoError(t, err)
	defer bob.Close()

	repoKey, err := cryptobox.GenerateRepoKey()
	require.NoError(t, err)

	docID := models.NewDocID()
	alicePeer := models.PeerID("alice-peer01")
	_, seq1, err := alice.AppendLocalOp(docID, alicePeer, models.Insert(0, "hello"), 100)
	require.NoError(t, err)
	_, seq2, err := alice.AppendLocalOp(docID, alicePeer, models.Insert(5, " world"), 200)
	require.NoError(t, err)
	require.Equal(t, uint64(1), seq1)
	require.Equal(t, uint64(2), seq2)

	aliceEngine := New(alicePeer, alice, Auto)
	aliceEngine.RepoKey = &repoKey

	pullResult, err := aliceEngine.Pull(docID, alice.LocalRepoID(), vvector.Range{Peer: alicePeer, Start: 0, End: 3})
	require.NoError(t, err)
	require.Len(t, pullResult.Ops, 2)

	bobEngine := New("bob-peer0001", bob, Auto)
	bobEngine.RepoKey = &repoKey
	require.NoError(t, bobEngine.Apply(alice.LocalRepoID(), pullResult.Ops, false))

	entries, err := bob.GetOps(models.Remote(alicePeer, alice.LocalRepoID()), docID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(2), bobEngine.VersionVector.Get(alicePeer))
}

func TestManualModeBuffersThenConfirms(t *testing.T) {
	dir := t.TempDir()
	mgr, err := ledger.Init(dir, 3, "", "")
	require.NoError(t, err)
	defer mgr.Close()

	repoKey, err := cryptobox.GenerateRepoKey()
	require.NoError(t, err)

	docID := models.NewDocID()
	remotePeer := models.PeerID("remote-peer1")
	entry := models.LedgerEntry{DocID: docID, Op: models.Insert(0, "x"), PeerID: remotePeer, Seq: 1}
	enc, err := repoKey.Encrypt(entry, 1)
	require.NoError(t, err)

	e := New("local-peer", mgr, Manual)
	e.RepoKey = &repoKey

	require.NoError(t, e.Apply(mgr.LocalRepoID(), []cryptobox.EncryptedOp{enc}, false))
	assert.Len(t, e.PendingOpsBuffer[remotePeer], 1)

	entries, err := mgr.GetOps(models.Remote(remotePeer, mgr.LocalRepoID()), docID)
	require.NoError(t, err)
	assert.Empty(t, entries, "manual mode must not mutate the store before confirm")

	require.NoError(t, e.ConfirmMerge(mgr.LocalRepoID()))
	assert.Empty(t, e.PendingOpsBuffer)

	entries, err = mgr.GetOps(models.Remote(remotePeer, mgr.LocalRepoID()), docID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
