package ledger

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/metadata"
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/orneryd/deve-ledger/pkg/treedelta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileRenameBindsNewInodeToNewDoc(t *testing.T) {
	dir := t.TempDir()
	mgr, err := Init(dir, 3, "", "")
	require.NoError(t, err)
	defer mgr.Close()

	inode := models.NewFileNodeID(1, 1)
	docID, renamed, delta, err := mgr.ReconcileRename("notes/a.md", inode)
	require.NoError(t, err)
	assert.False(t, renamed)
	require.NotNil(t, delta)
	assert.Equal(t, treedelta.Add, delta.Kind)

	bound, found, err := metadata.GetDocIDByInode(mgr.LocalStore(), inode)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, docID, bound)
}

func TestReconcileRenameDetectsMoveByInode(t *testing.T) {
	dir := t.TempDir()
	mgr, err := Init(dir, 3, "", "")
	require.NoError(t, err)
	defer mgr.Close()

	inode := models.NewFileNodeID(1, 2)
	docID, _, _, err := mgr.ReconcileRename("notes/a.md", inode)
	require.NoError(t, err)

	newDocID, renamed, delta, err := mgr.ReconcileRename("notes/moved.md", inode)
	require.NoError(t, err)
	assert.True(t, renamed)
	assert.Equal(t, docID, newDocID)
	require.NotNil(t, delta)
	assert.Equal(t, treedelta.Update, delta.Kind)
	assert.Equal(t, "notes/moved.md", delta.Path)

	path, found, err := metadata.GetPathByDocID(mgr.LocalStore(), newDocID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "notes/moved.md", path)
}

func TestReconcileRenameSameInodeSamePathIsNoop(t *testing.T) {
	dir := t.TempDir()
	mgr, err := Init(dir, 3, "", "")
	require.NoError(t, err)
	defer mgr.Close()

	inode := models.NewFileNodeID(1, 3)
	_, _, _, err = mgr.ReconcileRename("notes/a.md", inode)
	require.NoError(t, err)

	_, renamed, delta, err := mgr.ReconcileRename("notes/a.md", inode)
	require.NoError(t, err)
	assert.False(t, renamed)
	assert.Nil(t, delta)
}
