package sourcectl

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

func TestStageUnstageList(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, StageFile(db, "notes/a.md", 1000))
	require.NoError(t, StageFile(db, "notes/b.md", 1001))

	staged, err := ListStaged(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/a.md", "notes/b.md"}, staged)

	require.NoError(t, UnstageFile(db, "notes/a.md"))
	staged, err = ListStaged(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/b.md"}, staged)
}

func TestCreateCommitRequiresStaging(t *testing.T) {
	db := openTestStore(t)
	_, err := CreateCommitWithSnapshots(db, "empty commit", 1000, func(string) (models.DocID, string, bool) {
		return models.DocID{}, "", false
	})
	assert.ErrorIs(t, err, ErrNothingStaged)
}

func TestCreateCommitWithSnapshotsAndListChanges(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	require.NoError(t, StageFile(db, "notes/a.md", 1000))
	record, err := CreateCommitWithSnapshots(db, "first commit", 1000, func(path string) (models.DocID, string, bool) {
		if path == "notes/a.md" {
			return docID, "hello", true
		}
		return models.DocID{}, "", false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, record.DocCount)
	assert.Equal(t, "first commit", record.Message)

	staged, err := ListStaged(db)
	require.NoError(t, err)
	assert.Empty(t, staged)

	changes, err := ListChanges(db, []CurrentDoc{{DocID: docID, Path: "notes/a.md", Content: "hello"}})
	require.NoError(t, err)
	assert.Empty(t, changes, "immediately after commit, content matches the snapshot exactly")

	changes, err = ListChanges(db, []CurrentDoc{{DocID: docID, Path: "notes/a.md", Content: "hello world"}})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Modified, changes[0].Kind)

	changes, err = ListChanges(db, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Deleted, changes[0].Kind)

	newDocID := models.NewDocID()
	changes, err = ListChanges(db, []CurrentDoc{{DocID: newDocID, Path: "notes/c.md", Content: "new"}})
	require.NoError(t, err)
	// Both the new untracked doc (Added) and the committed-but-now-absent
	// doc (Deleted) should be reported.
	kinds := map[ChangeKind]int{}
	for _, c := range changes {
		kinds[c.Kind]++
	}
	assert.Equal(t, 1, kinds[Added])
	assert.Equal(t, 1, kinds[Deleted])
}

func TestCommitDeletionPurgesStaleSnapshot(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	require.NoError(t, StageFile(db, "notes/a.md", 1000))
	_, err := CreateCommitWithSnapshots(db, "add a.md", 1000, func(path string) (models.DocID, string, bool) {
		return docID, "hello", true
	})
	require.NoError(t, err)

	changes, err := ListChanges(db, []CurrentDoc{{DocID: docID, Path: "notes/a.md", Content: "hello"}})
	require.NoError(t, err)
	assert.Empty(t, changes)

	// File deleted before the next commit: resolve reports absence but
	// still carries the DocID recovered from the prior snapshot.
	require.NoError(t, StageFile(db, "notes/a.md", 2000))
	_, err = CreateCommitWithSnapshots(db, "delete a.md", 2000, func(path string) (models.DocID, string, bool) {
		resolvedID, found, err := DocIDForSnapshotPath(db, path)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, docID, resolvedID)
		return resolvedID, "", false
	})
	require.NoError(t, err)

	changes, err = ListChanges(db, nil)
	require.NoError(t, err)
	assert.Empty(t, changes, "the stale snapshot must be purged, not reported as a perpetual deletion")
}

func TestListCommitsDescendingByOrdinal(t *testing.T) {
	db := openTestStore(t)

	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, StageFile(db, "a.md", int64(i)))
		_, err := CreateCommitWithSnapshots(db, msg, int64(i), func(string) (models.DocID, string, bool) {
			return models.NewDocID(), "content", true
		})
		require.NoError(t, err)
	}

	commits, err := ListCommits(db, 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "third", commits[0].Message)
	assert.Equal(t, "second", commits[1].Message)
}

func TestDiffDocPath(t *testing.T) {
	db := openTestStore(t)
	docID := models.NewDocID()

	require.NoError(t, StageFile(db, "a.md", 0))
	_, err := CreateCommitWithSnapshots(db, "init", 0, func(string) (models.DocID, string, bool) {
		return docID, "line one\nline two\n", true
	})
	require.NoError(t, err)

	diff, err := DiffDocPath(db, "a.md", []CurrentDoc{{DocID: docID, Path: "a.md", Content: "line one\nline TWO\n"}})
	require.NoError(t, err)
	assert.Contains(t, diff, "-line two")
	assert.Contains(t, diff, "+line TWO")
}
