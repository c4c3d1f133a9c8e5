package engine

import (
	"strings"

	"github.com/keystorm-dev/keystorm-core/internal/engine/cursor"
	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// PasteRectangular inserts payload as a rectangular block starting at the
// primary cursor's position: payload is split on '\n', and line i of the
// split is inserted at the primary cursor's column on document line
// (primaryLine + i), padding short lines with rectPadByte and synthesizing
// trailing newlines if the block extends past the end of the document. The
// cursor set is replaced with one cursor per inserted line, parked at the
// right edge of its insertion.
func (e *Engine) PasteRectangular(payload string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	rows := strings.Split(payload, "\n")
	if len(rows) == 0 {
		return nil
	}

	anchor := e.cursors.Primary()
	startPt := e.buf.OffsetToPoint(anchor.Head)
	col := int(startPt.Column)

	cursorsBefore := e.cursors.All()
	var ops history.OperationList
	newSels := make([]cursor.Selection, 0, len(rows))

	// Process top row to bottom, re-querying line offsets fresh each time.
	// Each row's own insertion only ever shifts lines below it, which
	// later iterations haven't read offsets for yet, so a caret recorded
	// for a row is never invalidated by a later row's insertion.
	for i := 0; i < len(rows); i++ {
		line := startPt.Line + uint32(i)
		row := rows[i]

		for line >= e.buf.LineCount() {
			end := e.buf.Len()
			nl := e.buf.LineEnding().Sequence()
			op := history.NewInsertOperation(end, nl)
			if _, err := e.buf.Insert(end, nl); err != nil {
				return err
			}
			ops = append(ops, op)
		}

		lineEnd := e.buf.LineEndOffset(line)
		lineStart := e.buf.LineStartOffset(line)
		lineLen := int(lineEnd - lineStart)

		insertAt := lineStart + ByteOffset(col)
		text := row
		if col > lineLen {
			text = strings.Repeat(string(e.rectPadByte), col-lineLen) + row
			insertAt = lineEnd
		}

		op := history.NewInsertOperation(insertAt, text)
		if _, err := e.buf.Insert(insertAt, text); err != nil {
			return err
		}
		ops = append(ops, op)

		caret := insertAt + ByteOffset(len(text))
		newSels = append(newSels, cursor.NewCursorSelection(caret))
	}

	e.cursors.SetAll(newSels)
	e.cursors.SetRectangular(true)

	e.pushBatch(ops, cursorsBefore, e.cursors.All(), "Paste Rectangular")
	return nil
}
