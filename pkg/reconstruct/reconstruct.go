// Package reconstruct folds operation-log entries into document text
// and computes the minimal op sequence between two text snapshots. All
// positions are Unicode scalar (rune) indices, never UTF-8 byte
// offsets or UTF-16 code units.
package reconstruct

import (
	"github.com/orneryd/deve-ledger/pkg/models"
)

// ReconstructContent folds entries, in the order given, into a single
// string. Entries must already be ordered by authored GlobalSeq within
// the store they came from — this function never reorders by
// timestamp. Insert positions past the current length clamp to append;
// Delete ranges clamp to the current buffer.
func ReconstructContent(entries []models.LedgerEntry) string {
	buf := []rune{}
	for _, e := range entries {
		buf = applyOp(buf, e.Op)
	}
	return string(buf)
}

func applyOp(buf []rune, op models.Op) []rune {
	switch op.Kind {
	case models.OpInsert:
		pos := int(op.Pos)
		if pos > len(buf) {
			pos = len(buf)
		}
		content := []rune(op.Content)
		out := make([]rune, 0, len(buf)+len(content))
		out = append(out, buf[:pos]...)
		out = append(out, content...)
		out = append(out, buf[pos:]...)
		return out
	case models.OpDelete:
		pos := int(op.Pos)
		if pos > len(buf) {
			return buf
		}
		end := pos + int(op.Len)
		if end > len(buf) {
			end = len(buf)
		}
		out := make([]rune, 0, len(buf)-(end-pos))
		out = append(out, buf[:pos]...)
		out = append(out, buf[end:]...)
		return out
	default:
		return buf
	}
}
