// Package engine provides the core text-editing engine for Quill.
//
// The engine package is the facade: it owns one document's buffer,
// cursor, undo/redo history, and search state, and processes the
// high-level input intents a host shell produces from raw key and mouse
// events.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: line-vector document storage with character-indexed
//     mutation primitives
//   - cursor: caret position, selection anchor, and movement rules
//   - history: reversible commands and the bounded undo/redo stacks
//   - search: incremental find and replace
//
// The render window manager lives in internal/render/window and is fed
// scroll events through the same intent channel, but is otherwise
// decoupled from editing.
//
// # Concurrency
//
// The editor is deliberately not thread-safe. All intents are processed
// synchronously by a single goroutine; the host serializes event
// delivery, so there is exactly one mutator and no locks.
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("hello\nworld"))
//
//	e.Apply(engine.DocEnd{})
//	e.Apply(engine.CharacterInput{Ch: '!'})
//	e.Apply(engine.Undo{})
//
//	text := e.Content() // "hello\nworld"
//
// # Multi-Pane Hosts
//
// A host with several panes keeps one Editor per document. Each editor
// carries a unique ID; the host owns focus state and dispatches intents
// only to the focused instance.
package engine
