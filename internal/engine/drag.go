package engine

import "github.com/keystorm-dev/keystorm-core/internal/engine/cursor"

// DragState is a state in the drag-gesture state machine that drives
// mouse-driven selection: a plain drag press-moves-release sequence, or a
// rectangular (Alt/column) drag, collapses to a single committed selection
// or cursor set on release.
type DragState int

const (
	// DragIdle: no gesture in progress.
	DragIdle DragState = iota
	// DragPendingMove: button pressed, no UpdateDrag yet; a release here
	// is a plain click (collapse to cursor).
	DragPendingMove
	// DragMoving: UpdateDrag has been called during the gesture; further
	// moves extend the live selection.
	DragMoving
)

type dragState struct {
	state      DragState
	rectangle  bool
	startPoint ByteOffset
}

// BeginDrag starts a gesture at the given offset. rectangular selects
// column/block mode (e.g. Alt-drag).
func (e *Engine) BeginDrag(at ByteOffset, rectangular bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drag = dragState{state: DragPendingMove, rectangle: rectangular, startPoint: at}
	e.cursors.Set(cursor.NewCursorSelection(at))
}

// UpdateDrag extends the in-progress gesture to the given offset. Any call
// while a gesture is active transitions PendingMove to Moving; no movement
// threshold is applied.
func (e *Engine) UpdateDrag(at ByteOffset) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drag.state == DragIdle {
		return
	}
	e.drag.state = DragMoving

	if e.drag.rectangle {
		e.setRectangularBlockLocked(e.drag.startPoint, at)
		return
	}
	e.cursors.Set(cursor.NewSelection(e.drag.startPoint, at))
}

// setRectangularBlockLocked builds one cursor per line spanned by
// [start, end), each selecting the same column range. Must be called with
// e.mu held.
func (e *Engine) setRectangularBlockLocked(start, end ByteOffset) {
	startPt := e.buf.OffsetToPoint(start)
	endPt := e.buf.OffsetToPoint(end)

	lo, hi := startPt.Line, endPt.Line
	if lo > hi {
		lo, hi = hi, lo
	}

	startX := e.oracle.XOf(e.buf, start)
	endX := e.oracle.XOf(e.buf, end)

	sels := make([]cursor.Selection, 0, hi-lo+1)
	for line := lo; line <= hi; line++ {
		a := e.oracle.PosFrom(e.buf, line, startX)
		h := e.oracle.PosFrom(e.buf, line, endX)
		sels = append(sels, cursor.NewSelection(a, h))
	}
	e.cursors.SetAll(sels)
}

// EndDrag commits the gesture: a release in PendingMove state (no
// movement) collapses to a single cursor; a release in Moving state keeps
// the live selection/cursor set and, for a rectangular drag, marks the set
// as rectangular provenance. Returns to Idle either way.
func (e *Engine) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.drag.state {
	case DragPendingMove:
		e.cursors.CollapseAll()
	case DragMoving:
		if e.drag.rectangle {
			e.cursors.SetRectangular(true)
		}
	}
	e.drag = dragState{state: DragIdle}
}

// CancelDrag aborts an in-progress gesture without changing the cursor
// set, returning to Idle.
func (e *Engine) CancelDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = dragState{state: DragIdle}
}
