package reconstruct

import (
	"github.com/orneryd/deve-ledger/pkg/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ComputeDiff produces a minimal sequence of Op values that transforms
// oldText into newText. Positions are relative to the running state of
// applying earlier ops in the returned sequence (i.e. replaying the
// result through ReconstructContent against oldText reproduces
// newText).
func ComputeDiff(oldText, newText string) []models.Op {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var ops []models.Op
	pos := uint32(0)
	for _, d := range diffs {
		runes := []rune(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += uint32(len(runes))
		case diffmatchpatch.DiffInsert:
			ops = append(ops, models.Insert(pos, d.Text))
			pos += uint32(len(runes))
		case diffmatchpatch.DiffDelete:
			ops = append(ops, models.Delete(pos, uint32(len(runes))))
			// pos does not advance: the deleted span is no longer
			// present in the buffer the next op will see.
		}
	}
	return ops
}
