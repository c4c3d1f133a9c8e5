package engine

import (
	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/cursor"
	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// batch is a history.Command that wraps an already-applied operation list.
// Engine intents that don't fit InsertCommand/DeleteCommand/ReplaceCommand
// shape (rectangular paste, line moves, case conversion, replace-all) apply
// their edits directly against the buffer and cursor set, then hand the
// resulting operations to a batch for undo/redo bookkeeping.
//
// Redo replays ops in the order they were recorded. Undo replays
// ops.Invert(), which is already reversed and individually inverted, so
// undo always walks the operations back-to-front.
type batch struct {
	ops           history.OperationList
	cursorsBefore []cursor.Selection
	cursorsAfter  []cursor.Selection
	desc          string
}

func (b *batch) Execute(buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	for _, op := range b.ops {
		if _, err := buf.Replace(op.Range.Start, op.Range.End, op.NewText); err != nil {
			return err
		}
	}
	cursors.SetAll(b.cursorsAfter)
	return nil
}

func (b *batch) Undo(buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	for _, op := range b.ops.Invert() {
		if _, err := buf.Replace(op.Range.Start, op.Range.End, op.NewText); err != nil {
			return err
		}
	}
	cursors.SetAll(b.cursorsBefore)
	return nil
}

func (b *batch) Description() string {
	if b.desc == "" {
		return "Edit"
	}
	return b.desc
}

// pushBatch records an already-applied operation list as one undo unit.
func (e *Engine) pushBatch(ops history.OperationList, cursorsBefore, cursorsAfter []cursor.Selection, desc string) {
	e.history.Push(&batch{
		ops:           ops,
		cursorsBefore: cursorsBefore,
		cursorsAfter:  cursorsAfter,
		desc:          desc,
	})
}
