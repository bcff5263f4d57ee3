package vvector

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestGetAbsentPeerIsZero(t *testing.T) {
	v := New()
	assert.Equal(t, uint64(0), v.Get(models.PeerID("nope")))
}

func TestUpdateIsMonotone(t *testing.T) {
	v := New()
	v.Update("alice", 5)
	v.Update("alice", 3) // lower seq must not regress
	assert.Equal(t, uint64(5), v.Get("alice"))
	v.Update("alice", 7)
	assert.Equal(t, uint64(7), v.Get("alice"))
}

func TestCloneIsIndependent(t *testing.T) {
	v := New()
	v.Update("alice", 5)
	clone := v.Clone()
	clone.Update("alice", 9)
	assert.Equal(t, uint64(5), v.Get("alice"))
	assert.Equal(t, uint64(9), clone.Get("alice"))
}

func TestEqual(t *testing.T) {
	a := New()
	a.Update("alice", 5)
	b := New()
	b.Update("alice", 5)
	assert.True(t, a.Equal(b))

	b.Update("alice", 6)
	assert.False(t, a.Equal(b))
}

func TestMerge(t *testing.T) {
	a := New()
	a.Update("alice", 5)
	a.Update("bob", 2)
	b := New()
	b.Update("alice", 3)
	b.Update("carol", 9)

	a.Merge(b)
	assert.Equal(t, uint64(5), a.Get("alice"))
	assert.Equal(t, uint64(2), a.Get("bob"))
	assert.Equal(t, uint64(9), a.Get("carol"))
}

func TestIntersectionIsPointwiseMinimum(t *testing.T) {
	a := New()
	a.Update("alice", 5)
	a.Update("bob", 2)
	b := New()
	b.Update("alice", 3)
	b.Update("bob", 8)
	b.Update("carol", 1)

	lca := a.Intersection(b)
	assert.Equal(t, uint64(3), lca.Get("alice"))
	assert.Equal(t, uint64(2), lca.Get("bob"))
	assert.Equal(t, uint64(0), lca.Get("carol"))
}

func TestDiffProducesHalfOpenRanges(t *testing.T) {
	local := New()
	local.Update("alice", 5)
	remote := New()
	remote.Update("alice", 2)

	missingFromRemote, missingFromLocal := local.Diff(remote)
	if assert.Len(t, missingFromRemote, 1) {
		assert.Equal(t, Range{Peer: "alice", Start: 3, End: 6}, missingFromRemote[0])
	}
	assert.Empty(t, missingFromLocal)
}

func TestDiffWithPeerOnlyOnOneSide(t *testing.T) {
	local := New()
	local.Update("alice", 4)
	remote := New()
	remote.Update("bob", 2)

	missingFromRemote, missingFromLocal := local.Diff(remote)
	if assert.Len(t, missingFromRemote, 1) {
		assert.Equal(t, Range{Peer: "alice", Start: 1, End: 5}, missingFromRemote[0])
	}
	if assert.Len(t, missingFromLocal, 1) {
		assert.Equal(t, Range{Peer: "bob", Start: 1, End: 3}, missingFromLocal[0])
	}
}

func TestEntriesAreSortedByPeer(t *testing.T) {
	v := New()
	v.Update("zzz", 1)
	v.Update("aaa", 2)

	entries := v.Entries()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, models.PeerID("aaa"), entries[0].Peer)
		assert.Equal(t, models.PeerID("zzz"), entries[1].Peer)
	}
}
