package layout

import (
	"github.com/rivo/uniseg"
)

// MonospaceOracle is the default Shaper: every cell is CellWidth wide,
// grapheme clusters are segmented with uniseg (so combining marks and
// wide CJK runs collapse to the cluster they visually belong to), and
// tabs expand to the next TabWidth stop the way a terminal or a classic
// monospace code editor renders them.
type MonospaceOracle struct {
	CellWidth float64 // visual width of one narrow cell; also ReferenceCellWidth
	TabWidth  int     // columns per tab stop
}

// NewMonospaceOracle creates a MonospaceOracle with the given cell width
// and tab stop, applying defaults (cell width 1, tab width 4) when either
// is non-positive.
func NewMonospaceOracle(cellWidth float64, tabWidth int) *MonospaceOracle {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &MonospaceOracle{CellWidth: cellWidth, TabWidth: tabWidth}
}

// cluster describes one visual grapheme cluster within a line: its byte
// range and the visual column (in cells, before CellWidth scaling) at
// which it starts.
type cluster struct {
	start, end int
	col        int
}

// segment walks line once, splitting it into grapheme clusters and
// recording each one's starting visual column. Tabs are treated as their
// own single-byte cluster whose width reaches the next tab stop.
func (o *MonospaceOracle) segment(line []byte) []cluster {
	var segs []cluster
	col := 0
	state := -1
	pos := 0
	for pos < len(line) {
		if line[pos] == '\t' {
			next := ((col / o.TabWidth) + 1) * o.TabWidth
			segs = append(segs, cluster{start: pos, end: pos + 1, col: col})
			col = next
			pos++
			// Tab consumes uniseg's segmentation state; reset it since we
			// handled the boundary ourselves.
			state = -1
			continue
		}
		c, _, width, newState := uniseg.FirstGraphemeCluster(line[pos:], state)
		state = newState
		if width < 1 {
			width = 1
		}
		segs = append(segs, cluster{start: pos, end: pos + len(c), col: col})
		col += width
		pos += len(c)
	}
	// Sentinel cluster at line end, so callers always have a right edge.
	segs = append(segs, cluster{start: len(line), end: len(line), col: col})
	return segs
}

// XInLine implements Shaper.
func (o *MonospaceOracle) XInLine(line []byte, byteOffsetInLine int) float64 {
	if byteOffsetInLine <= 0 {
		return 0
	}
	segs := o.segment(line)
	for _, s := range segs {
		if s.start >= byteOffsetInLine {
			return float64(s.col) * o.CellWidth
		}
	}
	return float64(segs[len(segs)-1].col) * o.CellWidth
}

// OffsetInLineFromX implements Shaper.
func (o *MonospaceOracle) OffsetInLineFromX(line []byte, targetX float64) int {
	if len(line) == 0 {
		return 0
	}
	segs := o.segment(line)
	for i, s := range segs {
		x := float64(s.col) * o.CellWidth
		if x >= targetX {
			return s.start
		}
		if i+1 < len(segs) {
			nextX := float64(segs[i+1].col) * o.CellWidth
			if targetX < nextX {
				// Snap to whichever cluster boundary is visually closer.
				if targetX-x <= nextX-targetX {
					return s.start
				}
				return segs[i+1].start
			}
		}
	}
	return len(line)
}

// GraphemeStep implements Shaper.
func (o *MonospaceOracle) GraphemeStep(line []byte, byteOffsetInLine int, forward bool) int {
	segs := o.segment(line)
	idx := -1
	for i, s := range segs {
		if s.start == byteOffsetInLine {
			idx = i
			break
		}
	}
	if idx == -1 {
		// Offset doesn't land on a boundary (shouldn't normally happen);
		// clamp to the nearest one in the requested direction.
		for i, s := range segs {
			if s.start > byteOffsetInLine {
				idx = i
				break
			}
		}
		if idx == -1 {
			idx = len(segs) - 1
		}
	}
	if forward {
		if idx+1 < len(segs) {
			return segs[idx+1].start
		}
		return len(line)
	}
	if idx-1 >= 0 {
		return segs[idx-1].start
	}
	return 0
}

// ReferenceCellWidth implements Shaper.
func (o *MonospaceOracle) ReferenceCellWidth() float64 {
	return o.CellWidth
}
