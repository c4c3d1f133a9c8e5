// Package layout provides the Layout Oracle: the pure mapping between
// {line, byte offset} and visual X that every cursor-movement and
// virtual-space computation in the engine delegates to. The core never
// ships a shaper of its own — it calls the Shaper interface below and
// leaves real glyph shaping, kerning, and font metrics to the host.
package layout

// Shaper maps between byte offsets within a single line and visual X
// coordinates. Implementations must be deterministic for a fixed (font,
// size) pair; callers that change font parameters must treat any
// previously cached X value as stale.
//
// line is always the raw UTF-8 bytes of one line, excluding its
// terminator. byteOffsetInLine is relative to the start of that line, not
// the document.
type Shaper interface {
	// XInLine returns the visual X coordinate at byteOffsetInLine.
	XInLine(line []byte, byteOffsetInLine int) float64

	// OffsetInLineFromX returns the byte offset whose visual X is closest
	// to targetX, snapped to a grapheme cluster boundary. Returns 0 for an
	// empty line. When targetX exceeds the line's width, returns the
	// trailing edge (len(line)).
	OffsetInLineFromX(line []byte, targetX float64) int

	// GraphemeStep moves byteOffsetInLine by one visual cluster in the
	// given direction and returns the new offset, clamped to [0, len(line)].
	GraphemeStep(line []byte, byteOffsetInLine int, forward bool) int

	// ReferenceCellWidth returns the visual width of '0' in the current
	// font, used by the engine to size virtual-space padding.
	ReferenceCellWidth() float64
}
