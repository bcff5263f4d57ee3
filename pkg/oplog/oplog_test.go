package oplog

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppendOpAssignsIncreasingGlobalSeq(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	seq1, err := AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)
	seq2, err := AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 2, Op: models.Insert(1, "b")})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), seq1)
	assert.Equal(t, uint64(2), seq2)
}

func TestAppendGeneratedOpAssignsPerPeerSeq(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	build := func(seq uint64) models.LedgerEntry {
		return models.LedgerEntry{Op: models.Insert(0, "x")}
	}

	_, seq1, err := AppendGeneratedOp(db, docID, "alice", build)
	require.NoError(t, err)
	_, seq2, err := AppendGeneratedOp(db, docID, "alice", build)
	require.NoError(t, err)
	_, bobSeq, err := AppendGeneratedOp(db, docID, "bob", build)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), seq1)
	assert.Equal(t, uint64(2), seq2)
	assert.Equal(t, uint64(1), bobSeq, "each peer's seq is independent")
}

func TestGetOpsFromDBOrdersByGlobalSeq(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	_, err := AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)
	_, err = AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 2, Op: models.Insert(1, "b")})
	require.NoError(t, err)

	entries, err := GetOpsFromDB(db, docID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].GlobalSeq)
	assert.Equal(t, uint64(2), entries[1].GlobalSeq)
}

func TestGetOpsFromDBAfterFiltersByGlobalSeq(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	_, err := AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)
	_, err = AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 2, Op: models.Insert(1, "b")})
	require.NoError(t, err)

	entries, err := GetOpsFromDBAfter(db, docID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].GlobalSeq)
}

func TestGetMaxSeq(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	max, err := GetMaxSeq(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), max)

	_, err = AppendOp(db, models.LedgerEntry{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)

	max, err = GetMaxSeq(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), max)
}

func TestGetOpsInRange(t *testing.T) {
	db := openTestStore(t)
	docA := models.NewDocID()
	docB := models.NewDocID()

	_, err := AppendOp(db, models.LedgerEntry{DocID: docA, PeerID: "alice", Seq: 1, Op: models.Insert(0, "a")})
	require.NoError(t, err)
	_, err = AppendOp(db, models.LedgerEntry{DocID: docB, PeerID: "bob", Seq: 1, Op: models.Insert(0, "b")})
	require.NoError(t, err)
	_, err = AppendOp(db, models.LedgerEntry{DocID: docA, PeerID: "alice", Seq: 2, Op: models.Insert(1, "c")})
	require.NoError(t, err)

	entries, err := GetOpsInRange(db, 1, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
