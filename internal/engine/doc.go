// Package engine provides the Edit Engine: the facade that drives every
// editing intent (insert, delete, line operations, case conversion,
// find/replace, undo/redo) over the editing core's lower layers.
//
// # Architecture
//
// The engine composes several sub-packages:
//
//   - piece: the piece table that owns document bytes
//   - lineindex: a lazily rebuilt byte-offset index for line lookups
//   - buffer: coordinate conversion and thread-safe read/write access
//   - cursor: multi-cursor and rectangular selection management
//   - layout: the Layout Oracle, the abstract shaper boundary for
//     everything that needs a visual X coordinate
//   - history: command-based undo/redo with save-point tracking
//
// # Thread Safety
//
// Engine operations are thread-safe via an internal read-write mutex, but
// the editing core itself is specified as single-threaded cooperative:
// callers should not rely on interleaving two intents concurrently and
// expect to observe consistent intermediate state.
//
// # Basic usage
//
//	e := engine.New(engine.WithContent("hello"))
//	e.InsertAtCursors(", world")
//	e.Undo()
package engine
