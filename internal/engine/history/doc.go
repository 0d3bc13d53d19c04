// Package history provides reversible edit commands and the undo/redo
// stack manager.
//
// A Command captures, at construction time, everything needed to reverse
// itself without re-deriving state from the buffer: deletions carry the
// deleted content, insertions carry the inserted content and resulting
// cursor, replacements carry both old and new text. Executing then
// undoing a command restores buffer and cursor exactly; executing again
// after an undo reproduces the original result.
//
// History keeps two stacks. New commands clear the redo stack, the undo
// stack is bounded by a configurable size with oldest-first eviction, and
// a save point tracks the stack depth at the last save so modified state
// can be reported. Consecutive commands can be grouped into a single
// Composite undo unit, which executes sub-commands in insertion order and
// undoes them in reverse.
package history
