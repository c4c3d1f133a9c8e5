package engine

import (
	"math"

	"github.com/keystorm-dev/keystorm-core/internal/engine/cursor"
	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// isWordChar reports whether b is part of a "word" for find/replace and
// select-next-occurrence purposes: ASCII letters, digits, underscore, or
// any byte of a multi-byte UTF-8 sequence.
func isWordChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}

// InsertAtCursors replaces every selection's content with text, in a single
// undoable batch. When WithPaddedInsertMode is set, a cursor parked past the
// end of its physical line (Virtual true, DesiredX set) has its line padded
// with spaces up to the cursor's column before the insertion proceeds.
func (e *Engine) InsertAtCursors(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	if e.paddedInsert {
		e.padVirtualCursorsLocked()
	}

	cmd := history.NewInsertCommand(text)
	return e.history.Execute(cmd, e.buf, e.cursors)
}

// padVirtualCursorsLocked pads the physical line under each virtual cursor
// with spaces so that its offset matches its desired column, then clears
// the virtual flag. Must be called with e.mu held.
func (e *Engine) padVirtualCursorsLocked() {
	sels := e.cursors.All()
	changed := false
	for i, sel := range sels {
		if !sel.Virtual || !sel.IsEmpty() {
			continue
		}
		pt := e.buf.OffsetToPoint(sel.Head)
		lineEnd := e.buf.LineEndOffset(pt.Line)
		cell := e.oracle.ReferenceCellWidth()
		gap := sel.DesiredX - e.oracle.XOf(e.buf, lineEnd)
		if cell <= 0 || gap <= cell/2 {
			continue
		}
		padLen := int(math.Round(gap / cell))
		if padLen <= 0 {
			continue
		}
		if _, err := e.buf.Insert(lineEnd, spacesOf(padLen)); err != nil {
			continue
		}
		delta := ByteOffset(padLen)
		for j := range sels {
			if sels[j].Anchor >= lineEnd {
				sels[j].Anchor += delta
			}
			if sels[j].Head >= lineEnd {
				sels[j].Head += delta
			}
		}
		sels[i] = sels[i].WithVirtual(false)
		changed = true
	}
	if changed {
		e.cursors.SetAll(sels)
	}
}

func spacesOf(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// Backspace deletes one grapheme cluster (or the selection, if non-empty)
// before each cursor.
func (e *Engine) Backspace() error {
	return e.deleteCommand(history.DeleteBackward)
}

// DeleteForward deletes one grapheme cluster (or the selection, if
// non-empty) after each cursor.
func (e *Engine) DeleteForward() error {
	return e.deleteCommand(history.DeleteForward)
}

func (e *Engine) deleteCommand(dir history.DeleteDirection) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	cmd := history.NewDeleteCommand(dir)
	return e.history.Execute(cmd, e.buf, e.cursors)
}

// ReplaceSelections replaces each selection's content with replacement,
// as a single undoable batch. Unlike InsertAtCursors this does not touch
// virtual-space padding: it is meant for programmatic replacement (find's
// replace-one, snippet expansion) rather than typed input.
func (e *Engine) ReplaceSelections(replacement string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	cursorsBefore := e.cursors.All()
	var ops history.OperationList
	for i := len(cursorsBefore) - 1; i >= 0; i-- {
		r := cursorsBefore[i].Range()
		old := e.buf.TextRange(r.Start, r.End)
		if _, err := e.buf.Replace(r.Start, r.End, replacement); err != nil {
			return err
		}
		ops = append(ops, history.NewReplaceOperation(r, old, replacement))
		cursor.TransformCursorSet(e.cursors, Edit{Range: r, NewText: replacement})
	}
	e.pushBatch(ops, cursorsBefore, e.cursors.All(), "Replace")
	return nil
}

// SelectNextOccurrence extends the cursor set by one cursor covering the
// next occurrence (searching from the end of the primary selection, wrapping
// around the document) of the primary selection's text, or the word under
// the head when the primary selection is empty. The search is
// case-sensitive. The new selection is added through CursorSet.Add, which
// merges it with any existing selection it overlaps or touches.
func (e *Engine) SelectNextOccurrence() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	primary := e.cursors.Primary()
	needle := e.wordOrSelectionLocked(primary)
	if needle == "" {
		return nil
	}

	searchFrom := primary.End()
	found, ok, err := e.findForwardLocked(needle, searchFrom, FindOptions{MatchCase: true})
	if err != nil || !ok {
		return err
	}

	sel := cursor.NewSelection(found.Start, found.End)
	e.cursors.Add(sel)
	return nil
}

// wordOrSelectionLocked returns the primary selection's text, or, if it is
// empty, the word touching its head. Must be called with e.mu held.
func (e *Engine) wordOrSelectionLocked(sel cursor.Selection) string {
	if !sel.IsEmpty() {
		return e.buf.TextRange(sel.Start(), sel.End())
	}

	start, end := e.wordBoundsLocked(sel.Head)
	if start == end {
		return ""
	}
	return e.buf.TextRange(start, end)
}

// wordBoundsLocked returns the [start, end) byte range of the word touching
// offset, per isWordChar. Must be called with e.mu held.
func (e *Engine) wordBoundsLocked(offset ByteOffset) (ByteOffset, ByteOffset) {
	text := e.buf.Text()
	n := ByteOffset(len(text))

	start := offset
	for start > 0 && isWordChar(text[start-1]) {
		start--
	}
	end := offset
	for end < n && isWordChar(text[end]) {
		end++
	}
	return start, end
}
