package oplog

import (
	"fmt"
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadLatestSnapshot(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	require.NoError(t, SaveSnapshot(db, docID, 5, "hello", 200))
	require.NoError(t, SaveSnapshot(db, docID, 10, "hello world", 200))

	snap, found, err := LoadLatestSnapshot(db, docID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(10), snap.BaseSeq)
	assert.Equal(t, "hello world", snap.Content)
}

func TestLoadLatestSnapshotNotFound(t *testing.T) {
	db := openTestStore(t)
	_, found, err := LoadLatestSnapshot(db, models.NewDocID())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveSnapshotPrunesBeyondDepth(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, SaveSnapshot(db, docID, i, fmt.Sprintf("v%d", i), 2))
	}

	snap, found, err := LoadLatestSnapshot(db, docID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(5), snap.BaseSeq)

	// Only the depth-2 window (BaseSeq 4 and 5) should remain indexed.
	var remaining [][]byte
	require.NoError(t, db.View(func(txn *store.Txn) error {
		var err error
		remaining, err = txn.MultimapGet(store.TableSnapshotIdx, docID.Bytes())
		return err
	}))
	assert.Len(t, remaining, 2)
}

func TestPurgeDocRemovesOpsAndSnapshots(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	_, err := AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)
	require.NoError(t, SaveSnapshot(db, docID, 1, "a", 200))

	require.NoError(t, PurgeDoc(db, docID))

	entries, err := GetOpsFromDB(db, docID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, found, err := LoadLatestSnapshot(db, docID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResetShadowDocClearsDocOpsIndex(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	_, err := AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)

	entries, err := GetOpsFromDB(db, docID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, ResetShadowDoc(db, docID))

	entries, err = GetOpsFromDB(db, docID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
