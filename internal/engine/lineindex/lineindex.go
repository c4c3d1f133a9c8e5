// Package lineindex maintains a sorted array of line-start byte offsets over
// a piece table, rebuilt lazily with a single linear pass after each
// committed mutation. It never tracks line endings itself; line boundaries
// are wherever '\n' falls in the underlying bytes, verbatim.
package lineindex

// Source is the minimal view of a document an Index rebuilds itself from.
// *piece.Table satisfies this.
type Source interface {
	Length() int64
	Range(p, n int64) []byte
}

const scanChunk = 64 * 1024

// Index holds the start offset of every line in a document. starts[0] is
// always 0; a document with no trailing newline still has len(starts) ==
// number of lines, with the final line running to Length().
type Index struct {
	starts []int64
	length int64
	dirty  bool
}

// New returns an index with no backing scan performed yet. Call Rebuild
// before querying, or use Build to construct and scan in one step.
func New() *Index {
	return &Index{starts: []int64{0}, dirty: true}
}

// Build constructs an Index and immediately scans src.
func Build(src Source) *Index {
	ix := New()
	ix.Rebuild(src)
	return ix
}

// MarkDirty flags the index as needing a rebuild before its next query.
// The Edit Engine calls this after every committed mutation instead of
// rebuilding eagerly, so a caller issuing several edits before querying
// pays for one scan, not one per edit.
func (ix *Index) MarkDirty() {
	ix.dirty = true
}

// Dirty reports whether Rebuild must run before queries are trustworthy.
func (ix *Index) Dirty() bool {
	return ix.dirty
}

// Rebuild performs a single linear pass over src, recomputing every line
// start from scratch.
func (ix *Index) Rebuild(src Source) {
	length := src.Length()
	starts := make([]int64, 0, len(ix.starts))
	starts = append(starts, 0)

	var pos int64
	for pos < length {
		n := int64(scanChunk)
		if rem := length - pos; rem < n {
			n = rem
		}
		chunk := src.Range(pos, n)
		for i, b := range chunk {
			if b == '\n' {
				starts = append(starts, pos+int64(i)+1)
			}
		}
		pos += n
	}

	ix.starts = starts
	ix.length = length
	ix.dirty = false
}

// LineCount returns the number of lines in the index. An empty document has
// exactly one (empty) line.
func (ix *Index) LineCount() int {
	return len(ix.starts)
}

// LineOf returns the 0-based line number containing byte offset p. p is
// clamped to [0, length].
func (ix *Index) LineOf(p int64) int {
	if p < 0 {
		p = 0
	}
	if p > ix.length {
		p = ix.length
	}
	lo, hi := 0, len(ix.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ix.starts[mid] <= p {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LineRange returns the [start, end) byte range of line i, where end is the
// start of the next line (including its terminator) or the document length
// for the last line. ok is false if i is out of range.
func (ix *Index) LineRange(i int) (start, end int64, ok bool) {
	if i < 0 || i >= len(ix.starts) {
		return 0, 0, false
	}
	start = ix.starts[i]
	if i+1 < len(ix.starts) {
		end = ix.starts[i+1]
	} else {
		end = ix.length
	}
	return start, end, true
}

// LineStart returns the byte offset of the first byte of line i.
func (ix *Index) LineStart(i int) (int64, bool) {
	start, _, ok := ix.LineRange(i)
	return start, ok
}

// Clone returns an independent copy of the index, safe to hold alongside a
// table Snapshot whose backing table continues to mutate.
func (ix *Index) Clone() *Index {
	starts := make([]int64, len(ix.starts))
	copy(starts, ix.starts)
	return &Index{starts: starts, length: ix.length, dirty: ix.dirty}
}
