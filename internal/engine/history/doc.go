// Package history provides undo/redo for the editing engine: a stack of
// Commands (or batches of already-applied Operations, see the engine
// package's batch type) replayed forward on redo and backward on undo.
//
// # Operations
//
// An Operation represents a single atomic edit with before/after state:
//   - The range that was modified
//   - The old and new text
//   - Cursor positions before and after
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Built-in commands cover the engine's single-cursor-shaped editing
// intents:
//   - InsertCommand: Insert text at cursor positions
//   - DeleteCommand: Delete selected text or characters
//   - ReplaceCommand: Replace text in a range
//
// # History Stack
//
// The History type manages the undo/redo stacks:
//
//	history := NewHistory(1000) // Max 1000 undo entries
//
//	// Execute commands
//	history.Execute(cmd, buffer, cursors)
//
//	// Undo/redo
//	history.Undo(buffer, cursors)
//	history.Redo(buffer, cursors)
//
// # Save Points
//
// MarkSavePoint records the undo-stack depth at the moment a document is
// written to disk; IsModified compares the live depth against it so the
// file binding layer knows whether a close or reload needs to prompt.
//
// # Cursor Restoration
//
// Commands track cursor positions before and after execution,
// enabling proper cursor restoration on undo/redo.
package history
