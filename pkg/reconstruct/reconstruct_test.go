package reconstruct

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/stretchr/testify/assert"
)

func entry(op models.Op) models.LedgerEntry {
	return models.LedgerEntry{Op: op}
}

func TestReconstructContentAppliesInsertsAndDeletes(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.Insert(0, "hello")),
		entry(models.Insert(5, " world")),
		entry(models.Delete(0, 6)), // drop "hello "
	}
	assert.Equal(t, "world", ReconstructContent(entries))
}

func TestReconstructContentEmpty(t *testing.T) {
	assert.Equal(t, "", ReconstructContent(nil))
}

func TestReconstructContentClampsOutOfRangeInsert(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.Insert(0, "abc")),
		entry(models.Insert(999, "def")),
	}
	assert.Equal(t, "abcdef", ReconstructContent(entries))
}

func TestReconstructContentClampsOutOfRangeDelete(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.Insert(0, "abc")),
		entry(models.Delete(1, 999)),
	}
	assert.Equal(t, "a", ReconstructContent(entries))
}

func TestReconstructContentHandlesUnicodeRunes(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(models.Insert(0, "héllo 世界")),
	}
	assert.Equal(t, "héllo 世界", ReconstructContent(entries))
}
