package buffer

import (
	"unicode/utf8"

	"github.com/keystorm-dev/keystorm-core/internal/engine/lineindex"
	"github.com/keystorm-dev/keystorm-core/internal/engine/piece"
)

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It is safe for concurrent access and will not change even if the original
// buffer is modified afterward.
type Snapshot struct {
	table      *piece.Table
	lines      *lineindex.Index
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.table.String()
}

// TextRange returns text in the given byte range.
func (s *Snapshot) TextRange(start, end ByteOffset) string {
	return string(s.table.Range(start, end-start))
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return s.table.Length()
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return uint32(s.lines.LineCount())
}

// LineText returns the text of a specific line (without terminator).
func (s *Snapshot) LineText(line uint32) string {
	start, end := s.lineContentRange(line)
	return string(s.table.Range(start, end-start))
}

// LineLen returns the length of a specific line in bytes (without terminator).
func (s *Snapshot) LineLen(line uint32) int {
	start, end := s.lineContentRange(line)
	return int(end - start)
}

func (s *Snapshot) lineContentRange(line uint32) (ByteOffset, ByteOffset) {
	start, end, ok := s.lines.LineRange(int(line))
	if !ok {
		return 0, 0
	}
	if int(line) < s.lines.LineCount()-1 && end > start {
		if last, ok := s.table.ByteAt(end - 1); ok && last == '\n' {
			end--
			if end > start {
				if prev, ok := s.table.ByteAt(end - 1); ok && prev == '\r' {
					end--
				}
			}
		}
	}
	return start, end
}

// ByteAt returns the byte at the given offset.
func (s *Snapshot) ByteAt(offset ByteOffset) (byte, bool) {
	return s.table.ByteAt(offset)
}

// RuneAt returns the rune at the given byte offset.
// Returns utf8.RuneError and size 0 if offset is out of range.
func (s *Snapshot) RuneAt(offset ByteOffset) (rune, int) {
	length := s.table.Length()
	if offset < 0 || offset >= length {
		return utf8.RuneError, 0
	}

	n := ByteOffset(4)
	if length-offset < n {
		n = length - offset
	}
	return utf8.DecodeRune(s.table.Range(offset, n))
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(offset ByteOffset) Point {
	line := s.lines.LineOf(offset)
	start, _, _ := s.lines.LineRange(line)
	return Point{Line: uint32(line), Column: uint32(offset - start)}
}

// PointToOffset converts line/column to byte offset.
func (s *Snapshot) PointToOffset(point Point) ByteOffset {
	start, end, ok := s.lines.LineRange(int(point.Line))
	if !ok {
		return s.table.Length()
	}
	offset := start + ByteOffset(point.Column)
	if offset > end {
		offset = end
	}
	return offset
}

// OffsetToPointUTF16 converts a byte offset to UTF-16 line/column.
func (s *Snapshot) OffsetToPointUTF16(offset ByteOffset) PointUTF16 {
	line := s.lines.LineOf(offset)
	start, _, _ := s.lines.LineRange(line)
	lineText := s.table.Range(start, offset-start)
	return PointUTF16{Line: uint32(line), Column: utf16ColumnFromString(string(lineText))}
}

// PointUTF16ToOffset converts UTF-16 line/column to byte offset.
func (s *Snapshot) PointUTF16ToOffset(point PointUTF16) ByteOffset {
	start, end, ok := s.lines.LineRange(int(point.Line))
	if !ok {
		return s.table.Length()
	}
	lineText := s.table.Range(start, end-start)
	byteCol := byteOffsetFromUTF16Column(string(lineText), point.Column)
	return start + ByteOffset(byteCol)
}

// LineStartOffset returns the byte offset of the start of a line.
func (s *Snapshot) LineStartOffset(line uint32) ByteOffset {
	start, _, _ := s.lines.LineRange(int(line))
	return start
}

// LineEndOffset returns the byte offset of the end of a line (before any
// trailing terminator).
func (s *Snapshot) LineEndOffset(line uint32) ByteOffset {
	_, end := s.lineContentRange(line)
	return end
}

// RevisionID returns the revision ID of this snapshot.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return s.table.Length() == 0
}

// LineEnding returns the snapshot's recorded line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}
