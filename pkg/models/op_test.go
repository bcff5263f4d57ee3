package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertBuildsOpInsert(t *testing.T) {
	op := Insert(3, "abc")
	assert.Equal(t, OpInsert, op.Kind)
	assert.Equal(t, uint32(3), op.Pos)
	assert.Equal(t, "abc", op.Content)
}

func TestDeleteBuildsOpDelete(t *testing.T) {
	op := Delete(3, 5)
	assert.Equal(t, OpDelete, op.Kind)
	assert.Equal(t, uint32(3), op.Pos)
	assert.Equal(t, uint32(5), op.Len)
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "insert", OpInsert.String())
	assert.Equal(t, "delete", OpDelete.String())
}

func TestLocalAndRemoteRepoType(t *testing.T) {
	repoID := NewRepoID()
	local := Local(repoID)
	assert.Equal(t, RepoLocal, local.Kind)
	assert.Equal(t, repoID, local.RepoID)

	remote := Remote("peer1", repoID)
	assert.Equal(t, RepoRemote, remote.Kind)
	assert.Equal(t, PeerID("peer1"), remote.Peer)
	assert.Equal(t, repoID, remote.RepoID)
}
