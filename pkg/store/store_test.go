package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutGetRoundTrip(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Put(TableDocIDToPath, []byte("doc1"), []byte("notes/a.md"))
	}))

	var got []byte
	require.NoError(t, db.View(func(txn *Txn) error {
		v, err := txn.Get(TableDocIDToPath, []byte("doc1"))
		got = v
		return err
	}))
	assert.Equal(t, "notes/a.md", string(got))
}

func TestGetMissingKeyReturnsErrNotFound(t *testing.T) {
	db := openTestStore(t)

	err := db.View(func(txn *Txn) error {
		_, err := txn.Get(TableDocIDToPath, []byte("missing"))
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteInReadOnlyTxnFails(t *testing.T) {
	db := openTestStore(t)

	err := db.View(func(txn *Txn) error {
		return txn.Put(TableDocIDToPath, []byte("k"), []byte("v"))
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestTablesDoNotCollide(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		if err := txn.Put(TableDocIDToPath, []byte("k"), []byte("from-docid-table")); err != nil {
			return err
		}
		return txn.Put(TablePathToDocID, []byte("k"), []byte("from-path-table"))
	}))

	require.NoError(t, db.View(func(txn *Txn) error {
		a, err := txn.Get(TableDocIDToPath, []byte("k"))
		if err != nil {
			return err
		}
		assert.Equal(t, "from-docid-table", string(a))
		b, err := txn.Get(TablePathToDocID, []byte("k"))
		if err != nil {
			return err
		}
		assert.Equal(t, "from-path-table", string(b))
		return nil
	}))
}

func TestDeleteRemovesKey(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Put(TableDocIDToPath, []byte("k"), []byte("v"))
	}))
	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Delete(TableDocIDToPath, []byte("k"))
	}))

	err := db.View(func(txn *Txn) error {
		_, err := txn.Get(TableDocIDToPath, []byte("k"))
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasReportsPresence(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		return txn.Put(TableDocIDToPath, []byte("k"), []byte("v"))
	}))

	require.NoError(t, db.View(func(txn *Txn) error {
		ok, err := txn.Has(TableDocIDToPath, []byte("k"))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = txn.Has(TableDocIDToPath, []byte("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestScanPrefixReturnsKeySuffixes(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		for _, p := range []string{"notes/a.md", "notes/b.md", "other/c.md"} {
			if err := txn.Put(TablePathToDocID, []byte(p), []byte(p)); err != nil {
				return err
			}
		}
		return nil
	}))

	var found []string
	require.NoError(t, db.View(func(txn *Txn) error {
		return txn.ScanPrefix(TablePathToDocID, []byte("notes/"), func(key, _ []byte) error {
			found = append(found, string(key))
			return nil
		})
	}))
	assert.ElementsMatch(t, []string{"notes/a.md", "notes/b.md"}, found)
}

func TestScanRangeRespectsBounds(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.Update(func(txn *Txn) error {
		for _, k := range []byte{1, 2, 3, 4, 5} {
			if err := txn.Put(TableLedgerOps, []byte{k}, []byte{k}); err != nil {
				return err
			}
		}
		return nil
	}))

	var found []byte
	require.NoError(t, db.View(func(txn *Txn) error {
		return txn.ScanRange(TableLedgerOps, []byte{2}, []byte{4}, func(key, _ []byte) error {
			found = append(found, key[0])
			return nil
		})
	}))
	assert.Equal(t, []byte{2, 3, 4}, found)
}

func TestLastKeyReturnsHighWaterMark(t *testing.T) {
	db := openTestStore(t)

	require.NoError(t, db.View(func(txn *Txn) error {
		_, ok, err := txn.LastKey(TableLedgerOps)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))

	require.NoError(t, db.Update(func(txn *Txn) error {
		for _, k := range []byte{1, 2, 9} {
			if err := txn.Put(TableLedgerOps, []byte{k}, []byte{k}); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *Txn) error {
		k, ok, err := txn.LastKey(TableLedgerOps)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte{9}, k)
		return nil
	}))
}
