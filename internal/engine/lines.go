package engine

import (
	"strings"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/cursor"
	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// linesTouchedLocked returns the inclusive [first, last] line range touched
// by sel, including the terminator at the end of the last line when the
// selection is non-empty and doesn't stop mid-line. Must be called with
// e.mu held.
func (e *Engine) linesTouchedLocked(sel cursor.Selection) (uint32, uint32) {
	startPt := e.buf.OffsetToPoint(sel.Start())
	endPt := e.buf.OffsetToPoint(sel.End())
	last := endPt.Line
	if endPt.Column == 0 && last > startPt.Line {
		last--
	}
	return startPt.Line, last
}

// lineSpanLocked returns the byte range covering lines [first, last]
// inclusive, including the trailing line terminator when one follows last
// (so deleting it removes the whole line rather than leaving a blank one).
func (e *Engine) lineSpanLocked(first, last uint32) Range {
	start := e.buf.LineStartOffset(first)
	end := e.buf.LineEndOffset(last)
	termLen := ByteOffset(len(e.buf.LineEnding().Sequence()))
	if last+1 < e.buf.LineCount() {
		end += termLen
	} else if first > 0 {
		// Last line in the document: absorb the terminator before it instead,
		// so the document doesn't end with a dangling blank line.
		start -= termLen
	}
	return buffer.NewRange(start, end)
}

// DeleteLines removes every line touched by any current selection, as a
// single undoable batch. Adjacent/overlapping line spans are merged before
// deletion.
func (e *Engine) DeleteLines() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	spans := e.mergedLineSpansLocked()
	if len(spans) == 0 {
		return nil
	}

	cursorsBefore := e.cursors.All()
	ops := make(history.OperationList, len(spans))
	for i := len(spans) - 1; i >= 0; i-- {
		r := spans[i]
		old := e.buf.TextRange(r.Start, r.End)
		ops[len(spans)-1-i] = history.NewReplaceOperation(r, old, "")
		if _, err := e.buf.Replace(r.Start, r.End, ""); err != nil {
			return err
		}
	}

	newSels := make([]cursor.Selection, len(spans))
	for i, r := range spans {
		newSels[i] = cursor.NewCursorSelection(r.Start)
	}
	e.cursors.SetAll(newSels)
	e.cursors.Clamp(e.buf.Len())

	e.pushBatch(ops, cursorsBefore, e.cursors.All(), "Delete Line")
	return nil
}

// mergedLineSpansLocked returns the byte ranges for every selection's line
// span, merging spans that touch or overlap, sorted ascending. Must be
// called with e.mu held.
func (e *Engine) mergedLineSpansLocked() []Range {
	sels := e.cursors.All()
	if len(sels) == 0 {
		return nil
	}

	spans := make([]Range, len(sels))
	for i, sel := range sels {
		first, last := e.linesTouchedLocked(sel)
		spans[i] = e.lineSpanLocked(first, last)
	}

	merged := spans[:1]
	for _, s := range spans[1:] {
		top := &merged[len(merged)-1]
		if s.Start <= top.End {
			if s.End > top.End {
				top.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// MoveLinesUp swaps the lines touched by the primary selection with the
// line immediately above them. A no-op at the top of the document.
func (e *Engine) MoveLinesUp() error {
	return e.moveLines(-1)
}

// MoveLinesDown swaps the lines touched by the primary selection with the
// line immediately below them. A no-op at the bottom of the document.
func (e *Engine) MoveLinesDown() error {
	return e.moveLines(1)
}

func (e *Engine) moveLines(dir int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	first, last := e.linesTouchedLocked(e.cursors.Primary())

	if dir < 0 && first == 0 {
		return nil
	}
	if dir > 0 && last+1 >= e.buf.LineCount() {
		return nil
	}

	var blockFirst, blockLast, neighbor uint32
	if dir < 0 {
		blockFirst, blockLast, neighbor = first, last, first-1
	} else {
		blockFirst, blockLast, neighbor = first, last, last+1
	}

	// Each span runs from its first line's start to the next line's start;
	// a final line without a terminator gets one, so the swapped lines stay
	// separate.
	nl := e.buf.LineEnding().Sequence()
	rawSpan := func(first, last uint32) (Range, string) {
		end := e.buf.Len()
		if last+1 < e.buf.LineCount() {
			end = e.buf.LineStartOffset(last + 1)
		}
		r := buffer.NewRange(e.buf.LineStartOffset(first), end)
		text := e.buf.TextRange(r.Start, r.End)
		if !strings.HasSuffix(text, "\n") {
			text += nl
		}
		return r, text
	}
	blockRange, blockText := rawSpan(blockFirst, blockLast)
	neighborRange, neighborText := rawSpan(neighbor, neighbor)

	combined := buffer.NewRange(min64(blockRange.Start, neighborRange.Start), maxOffset(blockRange.End, neighborRange.End))
	oldCombined := e.buf.TextRange(combined.Start, combined.End)

	var newCombined string
	var newBlockStart, newNeighborStart ByteOffset
	if dir < 0 {
		newCombined = blockText + neighborText
		newBlockStart = combined.Start
		newNeighborStart = combined.Start + ByteOffset(len(blockText))
	} else {
		newCombined = neighborText + blockText
		newNeighborStart = combined.Start
		newBlockStart = combined.Start + ByteOffset(len(neighborText))
	}

	remap := func(o ByteOffset) ByteOffset {
		switch {
		case o >= blockRange.Start && o <= blockRange.End:
			return newBlockStart + (o - blockRange.Start)
		case o >= neighborRange.Start && o <= neighborRange.End:
			return newNeighborStart + (o - neighborRange.Start)
		default:
			return o
		}
	}

	cursorsBefore := e.cursors.All()
	if _, err := e.buf.Replace(combined.Start, combined.End, newCombined); err != nil {
		return err
	}

	newSels := make([]cursor.Selection, e.cursors.Count())
	for i, sel := range e.cursors.All() {
		newSels[i] = cursor.NewSelection(remap(sel.Anchor), remap(sel.Head))
	}
	e.cursors.SetAll(newSels)

	op := history.NewReplaceOperation(combined, oldCombined, newCombined)
	e.pushBatch(history.OperationList{op}, cursorsBefore, e.cursors.All(), "Move Line")
	return nil
}

func maxOffset(a, b ByteOffset) ByteOffset {
	if a > b {
		return a
	}
	return b
}

// DuplicateLinesUp duplicates the lines touched by the primary selection,
// inserting the copy above and leaving cursors on it so repeating the
// operation duplicates again.
func (e *Engine) DuplicateLinesUp() error {
	return e.duplicateLines(false)
}

// DuplicateLinesDown duplicates the lines touched by the primary
// selection, inserting the copy below and moving cursors onto it so
// repeating the operation duplicates again.
func (e *Engine) DuplicateLinesDown() error {
	return e.duplicateLines(true)
}

func (e *Engine) duplicateLines(down bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	first, last := e.linesTouchedLocked(e.cursors.Primary())
	span := e.lineSpanLocked(first, last)
	text := e.buf.TextRange(span.Start, span.End)
	if !strings.HasSuffix(text, e.buf.LineEnding().Sequence()) {
		text += e.buf.LineEnding().Sequence()
	}

	insertAt := span.Start
	if down {
		insertAt = span.End
	} else if start := e.buf.LineStartOffset(first); start > span.Start {
		// span took the terminator before a final line; copy the lines
		// themselves and put the copy at their start.
		text = e.buf.TextRange(start, span.End) + e.buf.LineEnding().Sequence()
		insertAt = start
	}

	cursorsBefore := e.cursors.All()
	if _, err := e.buf.Insert(insertAt, text); err != nil {
		return err
	}

	// Up inserts the copy before the block, so a cursor's raw offset
	// already lands on the copy with no adjustment. Down inserts the
	// copy after the block, so a cursor inside the block must move by
	// delta to land on the copy instead of staying on the untouched
	// original.
	newSels := make([]cursor.Selection, e.cursors.Count())
	for i, sel := range e.cursors.All() {
		if down && sel.Anchor >= span.Start && sel.Anchor < span.End && sel.Head >= span.Start && sel.Head < span.End {
			newSels[i] = sel.MoveBy(ByteOffset(len(text)))
		} else {
			newSels[i] = sel
		}
	}
	e.cursors.SetAll(newSels)

	op := history.NewInsertOperation(insertAt, text)
	e.pushBatch(history.OperationList{op}, cursorsBefore, e.cursors.All(), "Duplicate Line")
	return nil
}
