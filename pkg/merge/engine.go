package merge

import "strings"

// ThreeWayMerge merges local and remote against their common base. Fast
// paths handle the trivial convergent cases without touching the diff
// machinery; otherwise each side's edits against base are walked in
// start-position order, non-overlapping edits interleave freely,
// identical overlapping edits collapse to one, and any other overlap
// becomes a ConflictHunk.
func ThreeWayMerge(base, local, remote string) Result {
	if local == remote {
		return Result{Merged: local, Base: base, Local: local, Remote: remote}
	}
	if base == local {
		return Result{Merged: remote, Base: base, Local: local, Remote: remote}
	}
	if base == remote {
		return Result{Merged: local, Base: base, Local: local, Remote: remote}
	}

	localEdits := diffToEdits(base, local)
	remoteEdits := diffToEdits(base, remote)

	var merged []Edit
	var conflicts []ConflictHunk
	i, j := 0, 0
	for i < len(localEdits) || j < len(remoteEdits) {
		switch {
		case i < len(localEdits) && j < len(remoteEdits):
			l, r := localEdits[i], remoteEdits[j]
			switch {
			case editsOverlap(l, r):
				if editsEquivalent(l, r) {
					merged = append(merged, l)
				} else {
					conflicts = append(conflicts, buildConflictHunk(base, local, remote, l, r))
				}
				i++
				j++
			case l.Start < r.Start:
				merged = append(merged, l)
				i++
			default:
				merged = append(merged, r)
				j++
			}
		case i < len(localEdits):
			merged = append(merged, localEdits[i])
			i++
		default:
			merged = append(merged, remoteEdits[j])
			j++
		}
	}

	if len(conflicts) > 0 {
		return Result{Base: base, Local: local, Remote: remote, Conflicts: conflicts}
	}
	return Result{Merged: applyEdits(base, merged), Base: base, Local: local, Remote: remote}
}

func buildConflictHunk(base, local, remote string, localEdit, remoteEdit Edit) ConflictHunk {
	start := localEdit.Start
	if remoteEdit.Start < start {
		start = remoteEdit.Start
	}
	end := localEdit.End
	if remoteEdit.End > end {
		end = remoteEdit.End
	}
	startLine := charIndexToLine(base, start)
	endLine := charIndexToLine(base, end)
	length := endLine - startLine + 1
	if length < 0 {
		length = 0
	}

	return ConflictHunk{
		StartLine:   startLine,
		Length:      length,
		LocalLines:  linesInRange(local, startLine, endLine),
		RemoteLines: linesInRange(remote, startLine, endLine),
	}
}

// charIndexToLine maps a rune offset in s to the zero-based line number
// containing it.
func charIndexToLine(s string, charIndex int) int {
	line := 0
	count := 0
	for _, r := range s {
		if count >= charIndex {
			break
		}
		if r == '\n' {
			line++
		}
		count++
	}
	return line
}

// linesInRange returns the [startLine, endLine] (inclusive) lines of s,
// clamped to s's actual line count. Used to pull the whole conflicting
// line out of local/remote text, not just the narrow diff token that
// survives dmp's common-prefix/suffix stripping.
func linesInRange(s string, startLine, endLine int) []string {
	lines := strings.Split(s, "\n")
	if startLine >= len(lines) {
		return nil
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}
	if endLine < startLine {
		return nil
	}
	out := make([]string, endLine-startLine+1)
	copy(out, lines[startLine:endLine+1])
	return out
}
