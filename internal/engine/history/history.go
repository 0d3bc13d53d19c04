package history

import (
	"github.com/quillforge/quill/internal/engine/buffer"
	"github.com/quillforge/quill/internal/engine/cursor"
)

// DefaultMaxSize bounds the undo stack when no explicit limit is given.
const DefaultMaxSize = 100

// Save-point sentinels.
const (
	saveNone = -1 // never saved
	saveLost = -2 // saved state evicted from the undo stack, unreachable
)

// History manages the undo and redo stacks for a buffer.
//
// There is exactly one mutator in the engine, so History is plain owned
// state used from a single goroutine; it carries no locks.
type History struct {
	undo []Command
	redo []Command

	maxSize int

	// savePoint is the undo-stack depth recorded at the last save, or one
	// of the negative sentinels.
	savePoint int

	// group accumulates pushed commands into one undo unit while
	// grouping is active.
	group *Composite
}

// New creates a history bounded to maxSize undo entries. Non-positive
// sizes fall back to DefaultMaxSize.
func New(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &History{maxSize: maxSize, savePoint: saveNone}
}

// Apply executes cmd and records it.
func (h *History) Apply(cmd Command, buf *buffer.Buffer, cur *cursor.Cursor) {
	cmd.Execute(buf, cur)
	h.Push(cmd)
}

// Push records an already-executed command. While grouping is active the
// command joins the open composite; otherwise it lands on the undo stack,
// clearing the redo stack and evicting the oldest entry when over the
// size bound.
func (h *History) Push(cmd Command) {
	if h.group != nil {
		h.group.Add(cmd)
		return
	}
	h.pushToStack(cmd)
}

func (h *History) pushToStack(cmd Command) {
	h.redo = nil
	h.undo = append(h.undo, cmd)

	if len(h.undo) > h.maxSize {
		h.evictOldest()
	}
}

// evictOldest drops the front of the undo stack, keeping the save point
// aligned with the entries it still refers to.
func (h *History) evictOldest() {
	h.undo = h.undo[1:]
	if h.savePoint > 0 {
		h.savePoint--
	} else if h.savePoint == 0 {
		// The saved state sat below the evicted entry; no amount of
		// undoing can reach it anymore.
		h.savePoint = saveLost
	}
}

// Undo reverses the most recent command. An open group is flushed first
// so it becomes the unit being undone. Returns false if there was nothing
// to undo.
func (h *History) Undo(buf *buffer.Buffer, cur *cursor.Cursor) bool {
	if h.group != nil {
		h.EndGroup()
	}
	if len(h.undo) == 0 {
		return false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo(buf, cur)
	h.redo = append(h.redo, cmd)
	return true
}

// Redo re-executes the most recently undone command. Returns false if
// there was nothing to redo.
func (h *History) Redo(buf *buffer.Buffer, cur *cursor.Cursor) bool {
	if len(h.redo) == 0 {
		return false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Execute(buf, cur)
	h.undo = append(h.undo, cmd)
	return true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0 || h.group != nil
}

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoCount returns the number of entries on the undo stack.
func (h *History) UndoCount() int { return len(h.undo) }

// RedoCount returns the number of entries on the redo stack.
func (h *History) RedoCount() int { return len(h.redo) }

// BeginGroup opens a composite accumulation window: commands pushed until
// EndGroup form a single undo unit. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	if h.group == nil {
		h.group = NewComposite(name)
	}
}

// EndGroup closes the accumulation window. An empty composite is
// discarded rather than pushed.
func (h *History) EndGroup() {
	if h.group == nil {
		return
	}
	g := h.group
	h.group = nil
	if !g.Empty() {
		h.pushToStack(g)
	}
}

// IsGrouping reports whether a composite accumulation window is open.
func (h *History) IsGrouping() bool {
	return h.group != nil
}

// MarkSaved records the current undo-stack depth as the save point.
func (h *History) MarkSaved() {
	h.savePoint = len(h.undo)
}

// IsModified reports whether the document differs from its state at the
// last save: a group is in progress, the saved state was evicted, no save
// has occurred and the stack is non-empty, or the stack depth differs
// from the save point.
func (h *History) IsModified() bool {
	if h.group != nil {
		return true
	}
	switch h.savePoint {
	case saveLost:
		return true
	case saveNone:
		return len(h.undo) > 0
	}
	return h.savePoint != len(h.undo)
}

// MaxSize returns the undo-stack bound.
func (h *History) MaxSize() int { return h.maxSize }

// SetMaxSize changes the undo-stack bound, evicting oldest entries if the
// stack already exceeds it.
func (h *History) SetMaxSize(maxSize int) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	h.maxSize = maxSize
	for len(h.undo) > h.maxSize {
		h.evictOldest()
	}
}

// Clear discards all undo/redo state, the save point, and any open group.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.savePoint = saveNone
	h.group = nil
}
