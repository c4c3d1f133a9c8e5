package engine

import (
	"github.com/keystorm-dev/keystorm-core/internal/engine/buffer"
	"github.com/keystorm-dev/keystorm-core/internal/engine/layout"
)

// Default configuration values.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = 1000
	DefaultCellWidth      = 1.0
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width for the engine.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithLineEnding sets the line ending style for the engine.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = ending
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithShaper installs the Layout Oracle's shaper. When omitted, a
// MonospaceOracle with the default cell width and the engine's tab width
// is used.
func WithShaper(shaper layout.Shaper) Option {
	return func(e *Engine) {
		e.oracle = layout.NewOracle(shaper)
	}
}

// WithPaddedInsertMode enables padded-insert mode: typing at a cursor
// parked in virtual space first pads the physical line with spaces up to
// the cursor's desired column before inserting.
func WithPaddedInsertMode() Option {
	return func(e *Engine) {
		e.paddedInsert = true
	}
}

// WithRectanglePadByte sets the byte used to pad short lines during
// rectangular block paste. Defaults to ' '.
func WithRectanglePadByte(b byte) Option {
	return func(e *Engine) {
		e.rectPadByte = b
	}
}
