package reconstruct

// UTF16Index is an auxiliary checkpoint cache mapping Unicode scalar
// (rune) offsets to UTF-16 code-unit offsets, for editors (e.g.
// browser/VS Code based UIs) that address text in UTF-16 units while
// the ledger's Op positions are scalar-indexed. Checkpoints are
// recorded every CheckpointStride runes; lookups interpolate from the
// nearest checkpoint at or before the requested offset.
type UTF16Index struct {
	CheckpointStride int
	checkpoints      []checkpoint // sorted by RuneOffset
}

type checkpoint struct {
	RuneOffset int
	UTF16Offset int
}

// DefaultCheckpointStride matches a typical editor viewport's worth of
// text, balancing rebuild cost against lookup precision.
const DefaultCheckpointStride = 4096

// NewUTF16Index builds an index over content with the default stride.
func NewUTF16Index(content string) *UTF16Index {
	return NewUTF16IndexWithStride(content, DefaultCheckpointStride)
}

// NewUTF16IndexWithStride builds an index over content, recording a
// checkpoint every stride runes.
func NewUTF16IndexWithStride(content string, stride int) *UTF16Index {
	idx := &UTF16Index{CheckpointStride: stride}
	idx.rebuild(content)
	return idx
}

func (idx *UTF16Index) rebuild(content string) {
	idx.checkpoints = idx.checkpoints[:0]
	runeOffset := 0
	utf16Offset := 0
	idx.checkpoints = append(idx.checkpoints, checkpoint{0, 0})
	for _, r := range content {
		runeOffset++
		if r > 0xFFFF {
			utf16Offset += 2
		} else {
			utf16Offset++
		}
		if runeOffset%idx.CheckpointStride == 0 {
			idx.checkpoints = append(idx.checkpoints, checkpoint{runeOffset, utf16Offset})
		}
	}
}

// Rebuild invalidates and recomputes the index over the new content. A
// large insertion shifts every checkpoint after it, so callers rebuild
// wholesale rather than try to patch checkpoints in place.
func (idx *UTF16Index) Rebuild(content string) {
	idx.rebuild(content)
}

// UTF16Offset converts a rune offset into its corresponding UTF-16
// code-unit offset, interpolating from the nearest checkpoint at or
// before runeOffset by re-walking only the remainder.
func (idx *UTF16Index) UTF16Offset(content string, runeOffset int) int {
	best := idx.checkpoints[0]
	for _, cp := range idx.checkpoints {
		if cp.RuneOffset > runeOffset {
			break
		}
		best = cp
	}

	remaining := runeOffset - best.RuneOffset
	utf16Offset := best.UTF16Offset
	count := 0
	for _, r := range content[byteOffsetForRune(content, best.RuneOffset):] {
		if count >= remaining {
			break
		}
		if r > 0xFFFF {
			utf16Offset += 2
		} else {
			utf16Offset++
		}
		count++
	}
	return utf16Offset
}

// byteOffsetForRune returns the byte offset of the nth rune in s.
func byteOffsetForRune(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}
