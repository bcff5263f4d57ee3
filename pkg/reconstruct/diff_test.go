package reconstruct

import (
	"testing"

	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeDiffRoundTripsThroughReconstruct(t *testing.T) {
	cases := []struct{ old, new string }{
		{"", "hello"},
		{"hello", ""},
		{"hello world", "hello there world"},
		{"the quick fox", "the slow fox"},
		{"same", "same"},
		{"héllo", "héllo 世界"},
	}

	for _, c := range cases {
		ops := ComputeDiff(c.old, c.new)
		got := applyOntoBase(c.old, ops)
		assert.Equal(t, c.new, got, "old=%q new=%q ops=%+v", c.old, c.new, ops)
	}
}

func TestComputeDiffNoChangeProducesNoOps(t *testing.T) {
	ops := ComputeDiff("identical", "identical")
	assert.Empty(t, ops)
}

// applyOntoBase mirrors cmd/deve-ledger's own helper of the same name:
// ComputeDiff's op positions are relative to oldText, so base must be
// seeded as an Insert before replaying the diff ops.
func applyOntoBase(base string, ops []models.Op) string {
	entries := make([]models.LedgerEntry, 0, len(ops)+1)
	if base != "" {
		entries = append(entries, models.LedgerEntry{Op: models.Insert(0, base)})
	}
	for _, op := range ops {
		entries = append(entries, models.LedgerEntry{Op: op})
	}
	return ReconstructContent(entries)
}
