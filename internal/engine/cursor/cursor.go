// Package cursor tracks the caret position and the optional selection
// anchor, and resolves navigation against the buffer.
//
// The cursor is the moving end of the selection: any movement performed
// with the extend modifier pins the anchor at the pre-move position (if
// not already set), while movement without it clears the anchor. Read
// operations always see the selection normalized to document order.
package cursor

import "github.com/quillforge/quill/internal/engine/buffer"

// Direction identifies an arrow-key movement.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Cursor is a single caret position with an optional selection anchor.
type Cursor struct {
	pos    buffer.Position
	anchor *buffer.Position
}

// New creates a cursor at the start of the document.
func New() *Cursor {
	return &Cursor{}
}

// Position returns the current caret position.
func (c *Cursor) Position() buffer.Position {
	return c.pos
}

// Set moves the caret to p clamped to a valid position in buf, without
// touching the selection anchor.
func (c *Cursor) Set(buf *buffer.Buffer, p buffer.Position) {
	c.pos = clamp(buf, p)
}

// Clamp re-validates the caret and the selection anchor against the
// buffer. Call after any mutation that may have shortened the document.
// An anchor clamped onto the caret reads back as no selection.
func (c *Cursor) Clamp(buf *buffer.Buffer) {
	c.pos = clamp(buf, c.pos)
	if c.anchor != nil {
		a := clamp(buf, *c.anchor)
		c.anchor = &a
	}
}

func clamp(buf *buffer.Buffer, p buffer.Position) buffer.Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if max := buf.LineCount() - 1; p.Line > max {
		p.Line = max
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if max := buf.LineLen(p.Line); p.Col > max {
		p.Col = max
	}
	return p
}

// Move resolves an arrow-key movement against buf. Up and Down preserve
// the column where possible, clamped to the target line's length; Left at
// column 0 wraps to the end of the previous line; Right at end-of-line
// wraps to the start of the next. Movement at a document boundary is a
// no-op.
func (c *Cursor) Move(buf *buffer.Buffer, dir Direction, extend bool) {
	c.beginMove(extend)

	switch dir {
	case Up:
		if c.pos.Line > 0 {
			c.pos.Line--
			c.pos.Col = min(c.pos.Col, buf.LineLen(c.pos.Line))
		}
	case Down:
		if c.pos.Line+1 < buf.LineCount() {
			c.pos.Line++
			c.pos.Col = min(c.pos.Col, buf.LineLen(c.pos.Line))
		}
	case Left:
		if c.pos.Col > 0 {
			c.pos.Col--
		} else if c.pos.Line > 0 {
			c.pos.Line--
			c.pos.Col = buf.LineLen(c.pos.Line)
		}
	case Right:
		if c.pos.Col < buf.LineLen(c.pos.Line) {
			c.pos.Col++
		} else if c.pos.Line+1 < buf.LineCount() {
			c.pos.Line++
			c.pos.Col = 0
		}
	}
}

// MovePage moves the caret by lines (negative for page-up), clamped to
// the document, preserving the column where possible.
func (c *Cursor) MovePage(buf *buffer.Buffer, lines int, extend bool) {
	c.beginMove(extend)

	line := c.pos.Line + lines
	if line < 0 {
		line = 0
	}
	if max := buf.LineCount() - 1; line > max {
		line = max
	}
	c.pos.Line = line
	c.pos.Col = min(c.pos.Col, buf.LineLen(line))
}

// MoveLineStart moves the caret to column 0 of the current line.
func (c *Cursor) MoveLineStart(extend bool) {
	c.beginMove(extend)
	c.pos.Col = 0
}

// MoveLineEnd moves the caret past the last character of the current line.
func (c *Cursor) MoveLineEnd(buf *buffer.Buffer, extend bool) {
	c.beginMove(extend)
	c.pos.Col = buf.LineLen(c.pos.Line)
}

// MoveDocStart moves the caret to the start of the document.
func (c *Cursor) MoveDocStart(extend bool) {
	c.beginMove(extend)
	c.pos = buffer.Position{}
}

// MoveDocEnd moves the caret past the last character of the document.
func (c *Cursor) MoveDocEnd(buf *buffer.Buffer, extend bool) {
	c.beginMove(extend)
	last := buf.LineCount() - 1
	c.pos = buffer.Position{Line: last, Col: buf.LineLen(last)}
}

// beginMove applies the extend-modifier rule: with extend, the anchor is
// pinned at the pre-move caret if not already set; without it, the anchor
// is cleared.
func (c *Cursor) beginMove(extend bool) {
	if extend {
		if c.anchor == nil {
			a := c.pos
			c.anchor = &a
		}
	} else {
		c.anchor = nil
	}
}

// Selection

// StartSelection pins the selection anchor at the current caret position.
// Used for mouse-press handling.
func (c *Cursor) StartSelection() {
	a := c.pos
	c.anchor = &a
}

// ExtendTo moves the caret to p (clamped) keeping the anchor in place,
// pinning it first if unset. Used for mouse-drag handling.
func (c *Cursor) ExtendTo(buf *buffer.Buffer, p buffer.Position) {
	if c.anchor == nil {
		a := c.pos
		c.anchor = &a
	}
	c.pos = clamp(buf, p)
}

// ClearSelection drops the selection anchor.
func (c *Cursor) ClearSelection() {
	c.anchor = nil
}

// Selection returns the selection normalized to document order. A
// zero-length selection reports ok=false: consumers treat it as no
// selection.
func (c *Cursor) Selection() (start, end buffer.Position, ok bool) {
	if c.anchor == nil || *c.anchor == c.pos {
		return buffer.Position{}, buffer.Position{}, false
	}
	if c.anchor.Before(c.pos) {
		return *c.anchor, c.pos, true
	}
	return c.pos, *c.anchor, true
}

// HasSelection reports whether a non-empty selection exists.
func (c *Cursor) HasSelection() bool {
	_, _, ok := c.Selection()
	return ok
}

// SelectedText returns the selected text, or ok=false when there is no
// selection.
func (c *Cursor) SelectedText(buf *buffer.Buffer) (string, bool) {
	start, end, ok := c.Selection()
	if !ok {
		return "", false
	}
	return buf.TextRange(start, end), true
}
