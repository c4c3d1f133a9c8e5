package history

import (
	"errors"
	"sync"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// unreachableSavePoint marks a save point that no undo/redo sequence can
// return to: either history was cleared, or the entry at save time was
// evicted by the maxEntries cap. IsModified reports true forever after,
// until the next MarkSavePoint.
const unreachableSavePoint = -1

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []Command
	redoStack []Command

	// Configuration
	maxEntries int

	// savePoint is the undo-stack depth at the last save. isModified
	// compares the current depth against it; unreachableSavePoint means
	// the document can never report "unmodified" again until saved anew.
	savePoint int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &History{
		maxEntries: maxEntries,
		savePoint:  0,
	}
}

// MarkSavePoint records the current undo-stack depth as "saved". IsModified
// returns false exactly when the stack returns to this depth, whether by
// undo, redo, or simply not editing further.
func (h *History) MarkSavePoint() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.savePoint = len(h.undoStack)
}

// IsModified reports whether the document differs from its state at the
// last MarkSavePoint. Once the save point has been pushed out of reach by
// the maxEntries cap or a Clear, this returns true until the next
// MarkSavePoint, even if undo/redo happens to revisit the old byte content.
func (h *History) IsModified() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.savePoint == unreachableSavePoint {
		return true
	}
	return len(h.undoStack) != h.savePoint
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command, buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	if err := cmd.Execute(buf, cursors); err != nil {
		return err
	}

	h.Push(cmd)
	return nil
}

// Push adds a command to the undo stack, already executed, and clears the
// redo stack. The engine's batch-recorded intents apply their edits before
// calling this (through pushBatch in the engine package), so Push never runs
// Command.Execute itself.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushLocked(cmd)
}

// pushLocked adds a command without acquiring the lock.
func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, cmd)

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		// Remove oldest entries
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
		h.evictSavePoint(excess)
	}
}

// evictSavePoint adjusts savePoint after dropping the oldest n undo
// entries. A save point inside the dropped prefix can never be returned to
// again and becomes unreachable; one past it just shifts down.
func (h *History) evictSavePoint(n int) {
	if h.savePoint == unreachableSavePoint {
		return
	}
	if h.savePoint < n {
		h.savePoint = unreachableSavePoint
		return
	}
	h.savePoint -= n
}

// Undo undoes the last command.
// The lock is released during command execution to avoid holding it during
// potentially long-running buffer operations.
func (h *History) Undo(buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	// Execute undo without holding the lock
	if err := cmd.Undo(buf, cursors); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.undoStack = append(h.undoStack, cmd)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, cmd)
	h.mu.Unlock()
	return nil
}

// Redo redoes the last undone command.
// The lock is released during command execution to avoid holding it during
// potentially long-running buffer operations.
func (h *History) Redo(buf *buffer.Buffer, cursors *cursor.CursorSet) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	// Execute redo without holding the lock
	if err := cmd.Execute(buf, cursors); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.redoStack = append(h.redoStack, cmd)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, cmd)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history. Any save point other than the
// empty-history one (depth 0) becomes unreachable: there is no longer an
// undo sequence that returns to it.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	if h.savePoint != 0 {
		h.savePoint = unreachableSavePoint
	}
}
