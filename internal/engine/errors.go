package engine

import (
	"errors"
	"strconv"

	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/history"
)

// Errors returned by engine operations. The editing intents fail only with
// ErrReadOnly on a read-only engine or with an error passed up from the
// buffer; the range and overlap errors come from the raw ApplyEdit and
// ApplyEdits calls, and the undo/redo errors from Undo and Redo on an empty
// stack. Each of those is the same value the buffer or history package
// returns, so errors.Is matches it under either name.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the valid buffer range.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrEditsOverlap indicates edits overlap or are not in reverse order.
	ErrEditsOverlap = buffer.ErrEditsOverlap

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)

// RegexInvalid reports a malformed regular expression passed to Find or
// ReplaceAll. It is the one way a query (as opposed to an edit primitive)
// can fail.
type RegexInvalid struct {
	Pattern string
	Err     error
}

func (e *RegexInvalid) Error() string {
	return "invalid regex pattern " + strconv.Quote(e.Pattern) + ": " + e.Err.Error()
}

func (e *RegexInvalid) Unwrap() error {
	return e.Err
}
