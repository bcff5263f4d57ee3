package merge

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/vvector"
	"github.com/stretchr/testify/assert"
)

func TestFindLCAIsPointwiseMinimum(t *testing.T) {
	local := vvector.New()
	local.Update("alice", 5)
	local.Update("bob", 2)
	remote := vvector.New()
	remote.Update("alice", 3)
	remote.Update("bob", 8)

	lca := FindLCA(local, remote)
	assert.Equal(t, uint64(3), lca.Get("alice"))
	assert.Equal(t, uint64(2), lca.Get("bob"))
}

func TestReconstructStateAtOnlyVisibleOps(t *testing.T) {
	docID := models.NewDocID()
	allOps := []models.LedgerEntry{
		{DocID: docID, PeerID: "alice", Seq: 1, Op: models.Insert(0, "hello")},
		{DocID: docID, PeerID: "alice", Seq: 2, Op: models.Insert(5, " world")},
		{DocID: docID, PeerID: "alice", Seq: 3, Op: models.Insert(11, "!")},
	}

	vv := vvector.New()
	vv.Update("alice", 2)

	assert.Equal(t, "hello world", ReconstructStateAt(allOps, vv))
}
