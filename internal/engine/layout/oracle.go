package layout

import (
	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
)

// Source is the slice of document access the Oracle needs: per-line text
// lookup and byte-offset/line coordinate conversion. *buffer.Buffer and
// *buffer.Snapshot both satisfy it.
type Source interface {
	LineText(line uint32) string
	LineStartOffset(line uint32) buffer.ByteOffset
	OffsetToPoint(offset buffer.ByteOffset) buffer.Point
}

// Oracle wires a Shaper to a document Source, providing the two derived
// helpers every core operation that needs visual X actually calls:
// XOf locates a byte offset's line and delegates to the shaper, PosFrom
// does the reverse.
type Oracle struct {
	Shaper Shaper
}

// NewOracle creates an Oracle over the given Shaper.
func NewOracle(shaper Shaper) *Oracle {
	return &Oracle{Shaper: shaper}
}

// XOf locates p's line in src and returns its visual X coordinate.
func (o *Oracle) XOf(src Source, p buffer.ByteOffset) float64 {
	pt := src.OffsetToPoint(p)
	line := []byte(src.LineText(pt.Line))
	return o.Shaper.XInLine(line, int(pt.Column))
}

// PosFrom resolves a visual X on a given line back to a byte offset,
// adding the line's start so the result is a document-relative offset.
func (o *Oracle) PosFrom(src Source, lineIdx uint32, x float64) buffer.ByteOffset {
	line := []byte(src.LineText(lineIdx))
	lineOffset := o.Shaper.OffsetInLineFromX(line, x)
	return src.LineStartOffset(lineIdx) + buffer.ByteOffset(lineOffset)
}

// ReferenceCellWidth returns the shaper's reference cell width, used to
// size virtual-space padding (see the Edit Engine's padded-insert mode).
func (o *Oracle) ReferenceCellWidth() float64 {
	return o.Shaper.ReferenceCellWidth()
}
