// Package piece implements the editor's core text storage: a piece table
// over an immutable original byte region (typically a borrowed read-only
// file mapping) and a growable, append-only add buffer.
//
// A Table never copies the original bytes. The add buffer only grows by
// appending, and an append may move it to new backing storage; pieces hold
// offsets into one of the two regions, never raw pointers, so resolving a
// piece always indexes into the buffer's current backing storage.
package piece

import "fmt"

// Source identifies which backing byte region a Piece indexes into.
type Source uint8

const (
	// Original designates the table's borrowed, read-only byte region.
	Original Source = iota
	// Added designates the table's owned, append-only add buffer.
	Added
)

// String returns a human-readable name for the source tag.
func (s Source) String() string {
	if s == Added {
		return "added"
	}
	return "original"
}

// Piece is an immutable (source, start, length) triple. Pieces are never
// mutated once recorded in a Table's sequence; edits replace the sequence.
type Piece struct {
	Tag   Source
	Start int64
	Len   int64
}

// String returns a human-readable representation of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("%s[%d:%d]", p.Tag, p.Start, p.Start+p.Len)
}

// Table is a piece table: original bytes plus an add buffer plus an ordered
// sequence of pieces whose lengths sum to the logical document length.
//
// Table is not safe for concurrent use; the editing core is single-threaded
// cooperative (see the engine package) and callers needing concurrent reads
// should take a Snapshot.
type Table struct {
	original []byte // borrowed; never mutated or reallocated by the table
	add      []byte // owned; append-only
	pieces   []Piece
}

// New creates an empty piece table.
func New() *Table {
	return &Table{}
}

// NewFromOriginal creates a piece table seeded entirely from a borrowed
// original byte region (e.g. a read-only file mapping). The table never
// writes into original; it only ever appends to its own add buffer.
func NewFromOriginal(original []byte) *Table {
	t := &Table{original: original}
	if len(original) > 0 {
		t.pieces = []Piece{{Tag: Original, Start: 0, Len: int64(len(original))}}
	}
	return t
}

// NewFromString seeds a piece table by copying s into the add buffer. Useful
// for empty documents and tests; real file loads should use
// NewFromOriginal so the original mapping can be released without copying.
func NewFromString(s string) *Table {
	t := &Table{}
	if len(s) > 0 {
		t.add = append(t.add, s...)
		t.pieces = []Piece{{Tag: Added, Start: 0, Len: int64(len(s))}}
	}
	return t
}

// Length returns the sum of all piece lengths.
func (t *Table) Length() int64 {
	var n int64
	for _, p := range t.pieces {
		n += p.Len
	}
	return n
}

// sourceBytes returns the byte slice backing a piece's source tag.
func (t *Table) sourceBytes(tag Source) []byte {
	if tag == Added {
		return t.add
	}
	return t.original
}

// locate walks the piece sequence and returns the index of the piece
// containing logical offset p, plus the offset within that piece. If p
// equals the document length, idx is len(t.pieces) and off is 0.
func (t *Table) locate(p int64) (idx int, off int64) {
	var cum int64
	for i, pc := range t.pieces {
		if p < cum+pc.Len {
			return i, p - cum
		}
		cum += pc.Len
	}
	return len(t.pieces), 0
}

// ByteAt returns the byte at logical position p. The second return value is
// false if p is out of range.
func (t *Table) ByteAt(p int64) (byte, bool) {
	if p < 0 || p >= t.Length() {
		return 0, false
	}
	idx, off := t.locate(p)
	pc := t.pieces[idx]
	return t.sourceBytes(pc.Tag)[pc.Start+off], true
}

// Range copies at most n bytes starting at p into a fresh buffer, crossing
// piece boundaries as needed. n is clamped to length-p; a negative or
// out-of-range p yields an empty result.
func (t *Table) Range(p, n int64) []byte {
	length := t.Length()
	if p < 0 || p >= length || n <= 0 {
		return nil
	}
	if n > length-p {
		n = length - p
	}

	out := make([]byte, 0, n)
	idx, off := t.locate(p)
	remaining := n
	for remaining > 0 && idx < len(t.pieces) {
		pc := t.pieces[idx]
		avail := pc.Len - off
		take := avail
		if take > remaining {
			take = remaining
		}
		src := t.sourceBytes(pc.Tag)
		out = append(out, src[pc.Start+off:pc.Start+off+take]...)
		remaining -= take
		idx++
		off = 0
	}
	return out
}

// String returns the full document content. Prefer Range for large
// documents.
func (t *Table) String() string {
	return string(t.Range(0, t.Length()))
}

// Insert inserts bytes at logical position p. Out-of-range p clamps to
// [0, length]; inserting an empty slice is a no-op.
func (t *Table) Insert(p int64, data []byte) {
	if len(data) == 0 {
		return
	}
	length := t.Length()
	if p < 0 {
		p = 0
	} else if p > length {
		p = length
	}

	addStart := int64(len(t.add))
	t.add = append(t.add, data...)
	newLen := int64(len(data))

	idx, off := t.locate(p)

	// Coalesce into the immediately preceding Added piece when this
	// insertion lands exactly at its end in both document and add-buffer
	// space (the common case: sequential typing).
	if off == 0 && idx > 0 {
		prev := &t.pieces[idx-1]
		if prev.Tag == Added && prev.Start+prev.Len == addStart {
			prev.Len += newLen
			return
		}
	}

	newPiece := Piece{Tag: Added, Start: addStart, Len: newLen}

	switch {
	case idx == len(t.pieces):
		t.pieces = append(t.pieces, newPiece)
	case off == 0:
		t.pieces = insertPieceAt(t.pieces, idx, newPiece)
	default:
		pc := t.pieces[idx]
		left := Piece{Tag: pc.Tag, Start: pc.Start, Len: off}
		right := Piece{Tag: pc.Tag, Start: pc.Start + off, Len: pc.Len - off}
		t.pieces = replacePieceAt(t.pieces, idx, left, newPiece, right)
	}
}

// Erase removes n bytes starting at logical position p. Out-of-range
// arguments clamp; a zero-length erase is a no-op.
func (t *Table) Erase(p, n int64) {
	length := t.Length()
	if p < 0 {
		p = 0
	}
	if p >= length || n <= 0 {
		return
	}
	if n > length-p {
		n = length - p
	}
	end := p + n

	startIdx, startOff := t.locate(p)
	endIdx, endOff := t.locate(end)

	var result []Piece
	result = append(result, t.pieces[:startIdx]...)

	if startOff > 0 {
		pc := t.pieces[startIdx]
		result = append(result, Piece{Tag: pc.Tag, Start: pc.Start, Len: startOff})
	}

	if endIdx < len(t.pieces) && endOff > 0 {
		pc := t.pieces[endIdx]
		result = append(result, Piece{Tag: pc.Tag, Start: pc.Start + endOff, Len: pc.Len - endOff})
		endIdx++
	}

	result = append(result, t.pieces[endIdx:]...)
	t.pieces = result
}

// Pieces returns a copy of the current piece sequence, for testing and
// invariant checks.
func (t *Table) Pieces() []Piece {
	out := make([]Piece, len(t.pieces))
	copy(out, t.pieces)
	return out
}

// Snapshot returns a table sharing the original and add byte regions but
// holding its own copy of the piece sequence as of this call. Because
// edits only ever append to the add buffer and never rewrite bytes a
// piece already references, a snapshot's view of the document never
// changes even as the source table continues to mutate.
func (t *Table) Snapshot() *Table {
	return &Table{
		original: t.original,
		add:      t.add,
		pieces:   t.Pieces(),
	}
}

func insertPieceAt(pieces []Piece, idx int, p Piece) []Piece {
	out := make([]Piece, 0, len(pieces)+1)
	out = append(out, pieces[:idx]...)
	out = append(out, p)
	out = append(out, pieces[idx:]...)
	return out
}

func replacePieceAt(pieces []Piece, idx int, replacements ...Piece) []Piece {
	out := make([]Piece, 0, len(pieces)-1+len(replacements))
	out = append(out, pieces[:idx]...)
	out = append(out, replacements...)
	out = append(out, pieces[idx+1:]...)
	return out
}
