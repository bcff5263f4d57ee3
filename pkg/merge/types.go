// Package merge implements the three-way text merge engine: base/local/
// remote reconstructed at the LCA, local, and remote version vectors,
// merged by walking each side's edit list against the common base and
// reporting line-level conflicts where the two sides disagree. Grounded
// directly on original_source/crates/core/src/ledger/merge/engine.rs
// and diff.rs.
package merge

// Edit is a single replacement interval over the base text:
// base[Start:End] is replaced by Replacement. An empty Replacement is a
// pure deletion; Start == End is a pure insertion.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ConflictHunk describes one region where local and remote both edited
// overlapping, non-equivalent spans of base.
type ConflictHunk struct {
	StartLine   int
	Length      int
	LocalLines  []string
	RemoteLines []string
}

// Result is the outcome of a three-way merge: either a merged text, or
// a structured conflict carrying enough context for the caller to
// render a conflict view.
type Result struct {
	Merged    string
	Conflicts []ConflictHunk
	Base      string
	Local     string
	Remote    string
}

// HasConflicts reports whether the merge needs manual resolution.
func (r Result) HasConflicts() bool { return len(r.Conflicts) > 0 }
