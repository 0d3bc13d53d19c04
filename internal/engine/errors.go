package engine

import "errors"

// Errors returned by editor operations.
var (
	// ErrReadOnly indicates a mutating intent reached a read-only editor.
	ErrReadOnly = errors.New("editor is read-only")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoSelection indicates an operation needing a selection ran
	// without one.
	ErrNoSelection = errors.New("no selection")

	// ErrNoClipboard indicates no clipboard collaborator is attached.
	ErrNoClipboard = errors.New("no clipboard attached")
)
