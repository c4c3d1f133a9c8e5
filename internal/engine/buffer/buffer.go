package buffer

import (
	"errors"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/keystorm-dev/keystorm-core/internal/engine/lineindex"
	"github.com/keystorm-dev/keystorm-core/internal/engine/piece"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// LineEnding specifies the line ending style recorded as metadata for a
// buffer. It never causes bytes to be rewritten; edits pass newlines
// through verbatim regardless of this setting.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer is a piece-table-backed text buffer with lazily rebuilt line
// offsets. It is the primary interface for text manipulation in the
// editor engine. All methods are thread-safe.
//
// Buffer never rewrites a byte it did not receive as edit input: line
// endings pass through verbatim. LineEnding is recorded purely as
// metadata, used by higher layers to decide what to synthesize for new
// newlines (line move, line duplicate), never to normalize existing text.
type Buffer struct {
	mu         sync.RWMutex
	table      *piece.Table
	lines      *lineindex.Index
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		table:      piece.New(),
		lines:      lineindex.New(),
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}
	b.lines.MarkDirty()

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer seeded with initial content. The
// bytes of s are stored verbatim; no line-ending conversion is performed.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.table = piece.NewFromString(s)
	b.lines.MarkDirty()
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader, again storing
// bytes verbatim.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	b := NewBuffer(opts...)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	b.table = piece.NewFromString(string(data))
	b.lines.MarkDirty()
	return b, nil
}

// ensureLines rebuilds the line index if a prior mutation left it dirty.
// Rebuilding mutates the index, so callers must hold the exclusive lock
// (b.mu.Lock); write paths only mark the index dirty and leave the rebuild
// to the next line-based read.
func (b *Buffer) ensureLines() {
	if b.lines.Dirty() {
		b.lines.Rebuild(b.table)
	}
}

// Read Operations

// Text returns the full buffer content as a string.
// For large buffers, prefer using TextRange or iterators.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.String()
}

// TextRange returns text in the given byte range.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.table.Range(start, end-start))
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Length()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()
	return uint32(b.lines.LineCount())
}

// LineText returns the text of a specific line, with any trailing line
// terminator stripped.
func (b *Buffer) LineText(line uint32) string {
	start, end := b.lineContentRange(line)
	return string(b.table.Range(start, end-start))
}

// LineLen returns the length of a specific line in bytes (without terminator).
func (b *Buffer) LineLen(line uint32) int {
	start, end := b.lineContentRange(line)
	return int(end - start)
}

// lineContentRange returns [start, end) for line's content, excluding its
// trailing terminator. Caller does not need to hold a lock.
func (b *Buffer) lineContentRange(line uint32) (ByteOffset, ByteOffset) {
	b.mu.Lock()
	b.ensureLines()
	start, end, ok := b.lines.LineRange(int(line))
	count := b.lines.LineCount()
	b.mu.Unlock()
	if !ok {
		return 0, 0
	}
	if int(line) < count-1 && end > start {
		end = stripTerminator(b, start, end)
	}
	return start, end
}

// stripTerminator trims a single trailing \n, or \r\n, from [start, end).
func stripTerminator(b *Buffer, start, end ByteOffset) ByteOffset {
	if end-start == 0 {
		return end
	}
	last, ok := b.table.ByteAt(end - 1)
	if !ok || last != '\n' {
		return end
	}
	end--
	if end > start {
		if prev, ok := b.table.ByteAt(end - 1); ok && prev == '\r' {
			end--
		}
	}
	return end
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.ByteAt(offset)
}

// RuneAt returns the rune at the given byte offset.
// Returns utf8.RuneError and size 0 if offset is out of range.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	length := b.table.Length()
	if offset < 0 || offset >= length {
		return utf8.RuneError, 0
	}

	n := ByteOffset(4)
	if length-offset < n {
		n = length - offset
	}
	s := b.table.Range(offset, n)
	return utf8.DecodeRune(s)
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()

	line := b.lines.LineOf(offset)
	start, _, _ := b.lines.LineRange(line)
	return Point{Line: uint32(line), Column: uint32(offset - start)}
}

// PointToOffset converts line/column to byte offset.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()

	start, end, ok := b.lines.LineRange(int(point.Line))
	if !ok {
		return b.table.Length()
	}
	offset := start + ByteOffset(point.Column)
	if offset > end {
		offset = end
	}
	return offset
}

// OffsetToPointUTF16 converts a byte offset to UTF-16 line/column.
func (b *Buffer) OffsetToPointUTF16(offset ByteOffset) PointUTF16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()

	line := b.lines.LineOf(offset)
	start, _, _ := b.lines.LineRange(line)
	lineText := b.table.Range(start, offset-start)
	return PointUTF16{Line: uint32(line), Column: utf16ColumnFromString(string(lineText))}
}

// PointUTF16ToOffset converts UTF-16 line/column to byte offset.
func (b *Buffer) PointUTF16ToOffset(point PointUTF16) ByteOffset {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()

	start, end, ok := b.lines.LineRange(int(point.Line))
	if !ok {
		return b.table.Length()
	}
	lineText := b.table.Range(start, end-start)
	byteCol := byteOffsetFromUTF16Column(string(lineText), point.Column)
	return start + ByteOffset(byteCol)
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()
	start, _, _ := b.lines.LineRange(int(line))
	return start
}

// LineEndOffset returns the byte offset of the end of a line (before any
// trailing terminator).
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	_, end := b.lineContentRange(line)
	return end
}

// Write Operations

// Insert inserts text at the given offset, verbatim. Returns the end
// position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > b.table.Length() {
		return 0, ErrOffsetOutOfRange
	}

	b.table.Insert(offset, []byte(text))
	b.lines.MarkDirty()
	b.revisionID = NewRevisionID()

	return offset + ByteOffset(len(text)), nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > b.table.Length() {
		return ErrRangeInvalid
	}

	b.table.Erase(start, end-start)
	b.lines.MarkDirty()
	b.revisionID = NewRevisionID()

	return nil
}

// Replace replaces text in the given range with new text, verbatim.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > b.table.Length() {
		return 0, ErrRangeInvalid
	}

	b.table.Erase(start, end-start)
	b.table.Insert(start, []byte(text))
	b.lines.MarkDirty()
	b.revisionID = NewRevisionID()

	return start + ByteOffset(len(text)), nil
}

// ApplyEdit applies a single edit to the buffer.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
		edit.Range.End > b.table.Length() {
		return EditResult{}, ErrRangeInvalid
	}

	oldText := string(b.table.Range(edit.Range.Start, edit.Range.Len()))
	b.table.Erase(edit.Range.Start, edit.Range.Len())
	b.table.Insert(edit.Range.Start, []byte(edit.NewText))
	b.lines.MarkDirty()
	b.revisionID = NewRevisionID()

	newEnd := edit.Range.Start + ByteOffset(len(edit.NewText))

	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		Delta:    int64(len(edit.NewText)) - int64(edit.Range.Len()),
	}, nil
}

// ApplyEdits applies multiple edits atomically.
// Edits must be in reverse order (highest offset first) to maintain validity.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}

	length := b.table.Length()
	for _, edit := range edits {
		if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
			edit.Range.End > length {
			return ErrRangeInvalid
		}
	}

	for _, edit := range edits {
		b.table.Erase(edit.Range.Start, edit.Range.Len())
		b.table.Insert(edit.Range.Start, []byte(edit.NewText))
	}

	b.lines.MarkDirty()
	b.revisionID = NewRevisionID()
	return nil
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Length() == 0
}

// LineEnding returns the buffer's recorded line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetLineEnding sets the buffer's recorded line ending style.
// This never rewrites existing bytes; it only changes which terminator
// later synthesized newlines (line move, duplicate) should use.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabWidth = width
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLines()

	return &Snapshot{
		table:      b.table.Snapshot(),
		lines:      b.lines.Clone(),
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}

// Helper functions for UTF-16 conversion

// utf16ColumnFromString counts UTF-16 code units in a string.
func utf16ColumnFromString(s string) uint32 {
	var col uint32
	for _, r := range s {
		if r >= 0x10000 {
			col += 2 // Surrogate pair (characters outside BMP)
		} else {
			col++
		}
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column to byte offset within a line.
func byteOffsetFromUTF16Column(line string, utf16Col uint32) int {
	var col uint32
	var byteOffset int

	for _, r := range line {
		if col >= utf16Col {
			break
		}

		if r >= 0x10000 {
			col += 2 // Surrogate pair
		} else {
			col++
		}
		byteOffset += utf8.RuneLen(r)
	}

	return byteOffset
}
