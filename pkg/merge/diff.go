package merge

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffToEdits converts a base/other text pair into a sorted list of
// replacement intervals over base. Adjacent delete+insert pairs from
// the underlying diff collapse into a single replace Edit, matching
// how a human would describe "line B changed to B1" as one edit rather
// than a delete followed by an unrelated insert.
func diffToEdits(base, other string) []Edit {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, other, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var edits []Edit
	pos := 0 // position in base
	i := 0
	for i < len(diffs) {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += len([]rune(d.Text))
			i++
		case diffmatchpatch.DiffDelete:
			deleteLen := len([]rune(d.Text))
			replacement := ""
			j := i + 1
			if j < len(diffs) && diffs[j].Type == diffmatchpatch.DiffInsert {
				replacement = diffs[j].Text
				j++
			}
			edits = append(edits, Edit{Start: pos, End: pos + deleteLen, Replacement: replacement})
			pos += deleteLen
			i = j
		case diffmatchpatch.DiffInsert:
			edits = append(edits, Edit{Start: pos, End: pos, Replacement: d.Text})
			i++
		}
	}
	return edits
}

// editsOverlap reports whether a and b touch any common base position.
// Two pure insertions at the same position are treated as overlapping
// so they go through the equivalence/conflict check rather than being
// silently reordered.
func editsOverlap(a, b Edit) bool {
	if a.Start == a.End && b.Start == b.End {
		return a.Start == b.Start
	}
	return a.Start < b.End && b.Start < a.End
}

// editsEquivalent reports whether a and b are the same edit (both
// sides made the identical change).
func editsEquivalent(a, b Edit) bool {
	return a.Start == b.Start && a.End == b.End && a.Replacement == b.Replacement
}

// applyEdits applies a sorted, non-overlapping list of edits to base.
func applyEdits(base string, edits []Edit) string {
	runes := []rune(base)
	var out []rune
	cursor := 0
	for _, e := range edits {
		if e.Start > cursor {
			out = append(out, runes[cursor:e.Start]...)
		}
		out = append(out, []rune(e.Replacement)...)
		cursor = e.End
	}
	if cursor < len(runes) {
		out = append(out, runes[cursor:]...)
	}
	return string(out)
}
