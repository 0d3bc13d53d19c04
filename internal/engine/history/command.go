package history

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quillforge/quill/internal/engine/buffer"
	"github.com/quillforge/quill/internal/engine/cursor"
)

// Command is a reversible edit action. Commands are deterministic: they
// read nothing beyond their captured state and the buffer, so executing
// after an undo always reproduces the same result.
//
// The variant set is closed; all implementations live in this package.
type Command interface {
	// Execute performs the edit against buf and moves the cursor to the
	// position resulting from the edit.
	Execute(buf *buffer.Buffer, cur *cursor.Cursor)

	// Undo reverses the edit, restoring buffer content and cursor to
	// their pre-Execute state.
	Undo(buf *buffer.Buffer, cur *cursor.Cursor)

	// Name returns a short human-readable label for the command.
	Name() string
}

// InsertChar inserts a single character.
type InsertChar struct {
	Line, Col int
	Ch        rune
	before    buffer.Position
	after     buffer.Position
}

// NewInsertChar creates an insert-character command at (line, col).
func NewInsertChar(line, col int, ch rune, cursorBefore buffer.Position) *InsertChar {
	return &InsertChar{
		Line:   line,
		Col:    col,
		Ch:     ch,
		before: cursorBefore,
		after:  buffer.Position{Line: line, Col: col + 1},
	}
}

func (c *InsertChar) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.InsertChar(c.Line, c.Col, c.Ch)
	cur.Set(buf, c.after)
}

func (c *InsertChar) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.DeleteForward(c.Line, c.Col)
	cur.Set(buf, c.before)
}

func (c *InsertChar) Name() string {
	switch c.Ch {
	case '\t':
		return "insert tab"
	default:
		return fmt.Sprintf("type %q", c.Ch)
	}
}

// DeleteChar removes the character before the given column, or merges the
// line into the previous one when the column is 0 (backspace semantics).
type DeleteChar struct {
	Line, Col int
	deleted   rune
	hasRune   bool
	merged    bool
	before    buffer.Position
	after     buffer.Position
}

// NewDeleteChar creates a backspace command, reading the character (or
// line content) about to be deleted so the command can restore it.
func NewDeleteChar(buf *buffer.Buffer, line, col int, cursorBefore buffer.Position) *DeleteChar {
	c := &DeleteChar{Line: line, Col: col, before: cursorBefore, after: cursorBefore}
	switch {
	case col > 0:
		c.deleted, c.hasRune = buf.RuneAt(line, col-1)
		c.after = buffer.Position{Line: line, Col: col - 1}
	case line > 0:
		c.merged = true
		c.after = buffer.Position{Line: line - 1, Col: buf.LineLen(line - 1)}
	}
	return c
}

func (c *DeleteChar) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.DeleteChar(c.Line, c.Col)
	cur.Set(buf, c.after)
}

func (c *DeleteChar) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	if c.merged {
		// Splitting at the merge point restores both lines exactly.
		buf.InsertNewline(c.after.Line, c.after.Col)
	} else if c.hasRune {
		buf.InsertChar(c.Line, c.Col-1, c.deleted)
	}
	cur.Set(buf, c.before)
}

func (c *DeleteChar) Name() string { return "backspace" }

// DeleteForward removes the character at the given column, or merges the
// next line into this one when at end-of-line (delete-key semantics).
type DeleteForward struct {
	Line, Col  int
	deleted    rune
	hasRune    bool
	mergedNext bool
	before     buffer.Position
}

// NewDeleteForward creates a delete-key command.
func NewDeleteForward(buf *buffer.Buffer, line, col int, cursorBefore buffer.Position) *DeleteForward {
	c := &DeleteForward{Line: line, Col: col, before: cursorBefore}
	if col < buf.LineLen(line) {
		c.deleted, c.hasRune = buf.RuneAt(line, col)
	} else if line+1 < buf.LineCount() {
		c.mergedNext = true
	}
	return c
}

func (c *DeleteForward) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.DeleteForward(c.Line, c.Col)
	// The cursor does not move on forward delete.
	cur.Set(buf, c.before)
}

func (c *DeleteForward) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	if c.mergedNext {
		buf.InsertNewline(c.Line, c.Col)
	} else if c.hasRune {
		buf.InsertChar(c.Line, c.Col, c.deleted)
	}
	cur.Set(buf, c.before)
}

func (c *DeleteForward) Name() string { return "delete" }

// InsertNewline splits a line at the given column.
type InsertNewline struct {
	Line, Col int
	before    buffer.Position
	after     buffer.Position
}

// NewInsertNewline creates a line-split command at (line, col).
func NewInsertNewline(line, col int, cursorBefore buffer.Position) *InsertNewline {
	return &InsertNewline{
		Line:   line,
		Col:    col,
		before: cursorBefore,
		after:  buffer.Position{Line: line + 1, Col: 0},
	}
}

func (c *InsertNewline) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.InsertNewline(c.Line, c.Col)
	cur.Set(buf, c.after)
}

func (c *InsertNewline) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.DeleteChar(c.Line+1, 0)
	cur.Set(buf, c.before)
}

func (c *InsertNewline) Name() string { return "insert newline" }

// InsertText inserts a multi-character string, possibly spanning lines
// (paste semantics).
type InsertText struct {
	Line, Col int
	Text      string
	before    buffer.Position
	after     buffer.Position
}

// NewInsertText creates a multi-character insert command at (line, col).
func NewInsertText(line, col int, text string, cursorBefore buffer.Position) *InsertText {
	return &InsertText{
		Line:   line,
		Col:    col,
		Text:   text,
		before: cursorBefore,
		after:  endOfInsertion(buffer.Position{Line: line, Col: col}, text),
	}
}

func (c *InsertText) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	insertSpan(buf, buffer.Position{Line: c.Line, Col: c.Col}, c.Text)
	cur.Set(buf, c.after)
}

func (c *InsertText) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	deleteSpan(buf, buffer.Position{Line: c.Line, Col: c.Col}, c.after)
	cur.Set(buf, c.before)
}

func (c *InsertText) Name() string {
	n := utf8.RuneCountInString(c.Text)
	if n <= 20 {
		return fmt.Sprintf("insert %q", c.Text)
	}
	return fmt.Sprintf("insert %d characters", n)
}

// DeleteRange removes the text between two positions (selection
// deletion).
type DeleteRange struct {
	Start, End buffer.Position
	deleted    string
	before     buffer.Position
}

// NewDeleteRange creates a range-deletion command. Start and End must be
// in document order; the deleted text is captured for undo.
func NewDeleteRange(buf *buffer.Buffer, start, end, cursorBefore buffer.Position) *DeleteRange {
	return &DeleteRange{
		Start:   start,
		End:     end,
		deleted: buf.TextRange(start, end),
		before:  cursorBefore,
	}
}

func (c *DeleteRange) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	deleteSpan(buf, c.Start, c.End)
	cur.Set(buf, c.Start)
}

func (c *DeleteRange) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	insertSpan(buf, c.Start, c.deleted)
	cur.Set(buf, c.before)
}

func (c *DeleteRange) Name() string { return "delete selection" }

// ReplaceText replaces a single-line character span with new text
// (search/replace semantics).
type ReplaceText struct {
	Pos     buffer.Position
	OldText string
	NewText string
	before  buffer.Position
	after   buffer.Position
}

// NewReplaceText creates a replace command covering oldLen characters at
// pos. The old text is read from the buffer so the command can restore it.
func NewReplaceText(buf *buffer.Buffer, pos buffer.Position, oldLen int, newText string, cursorBefore buffer.Position) *ReplaceText {
	line := buf.Line(pos.Line)
	runes := []rune(line)
	to := pos.Col + oldLen
	if to > len(runes) {
		to = len(runes)
	}
	from := pos.Col
	if from > len(runes) {
		from = len(runes)
	}
	return &ReplaceText{
		Pos:     pos,
		OldText: string(runes[from:to]),
		NewText: newText,
		before:  cursorBefore,
		after:   buffer.Position{Line: pos.Line, Col: pos.Col + utf8.RuneCountInString(newText)},
	}
}

func (c *ReplaceText) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.ReplaceRange(c.Pos.Line, c.Pos.Col, utf8.RuneCountInString(c.OldText), c.NewText)
	cur.Set(buf, c.after)
}

func (c *ReplaceText) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	buf.ReplaceRange(c.Pos.Line, c.Pos.Col, utf8.RuneCountInString(c.NewText), c.OldText)
	cur.Set(buf, c.before)
}

func (c *ReplaceText) Name() string {
	return fmt.Sprintf("replace %q with %q", c.OldText, c.NewText)
}

// Composite groups multiple commands into one undo unit. Execution
// applies sub-commands in insertion order; undo applies them in reverse,
// which keeps positional dependencies valid (replace-all processes
// matches back-to-front on execute, so undo runs in forward document
// order).
type Composite struct {
	name string
	cmds []Command
}

// NewComposite creates an empty composite with a descriptive name.
func NewComposite(name string) *Composite {
	return &Composite{name: name}
}

// Add appends a sub-command. Composites are frozen once pushed to the
// undo stack; Add must not be called after that.
func (c *Composite) Add(cmd Command) {
	c.cmds = append(c.cmds, cmd)
}

// Empty reports whether the composite has no sub-commands.
func (c *Composite) Empty() bool { return len(c.cmds) == 0 }

// Len returns the number of sub-commands.
func (c *Composite) Len() int { return len(c.cmds) }

func (c *Composite) Execute(buf *buffer.Buffer, cur *cursor.Cursor) {
	for _, cmd := range c.cmds {
		cmd.Execute(buf, cur)
	}
}

func (c *Composite) Undo(buf *buffer.Buffer, cur *cursor.Cursor) {
	for i := len(c.cmds) - 1; i >= 0; i-- {
		c.cmds[i].Undo(buf, cur)
	}
}

func (c *Composite) Name() string {
	if c.name != "" {
		return c.name
	}
	if len(c.cmds) == 1 {
		return c.cmds[0].Name()
	}
	return fmt.Sprintf("%d edits", len(c.cmds))
}

// Span helpers shared by the multi-line commands.

// endOfInsertion computes the cursor position after inserting text at pos.
func endOfInsertion(pos buffer.Position, text string) buffer.Position {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return buffer.Position{Line: pos.Line, Col: pos.Col + utf8.RuneCountInString(text)}
	}
	return buffer.Position{
		Line: pos.Line + len(lines) - 1,
		Col:  utf8.RuneCountInString(lines[len(lines)-1]),
	}
}

// insertSpan inserts text at pos, splitting lines at each \n, and returns
// the end position of the insertion.
func insertSpan(buf *buffer.Buffer, pos buffer.Position, text string) buffer.Position {
	line, col := pos.Line, pos.Col
	for _, ch := range text {
		if ch == '\n' {
			buf.InsertNewline(line, col)
			line++
			col = 0
		} else {
			buf.InsertChar(line, col, ch)
			col++
		}
	}
	return buffer.Position{Line: line, Col: col}
}

// deleteSpan removes the text between start and end (document order).
// Affected lines are trimmed first and the survivors merged last, so
// every intermediate step addresses positions that still exist.
func deleteSpan(buf *buffer.Buffer, start, end buffer.Position) {
	if start.Compare(end) >= 0 {
		return
	}
	if start.Line == end.Line {
		buf.ReplaceRange(start.Line, start.Col, end.Col-start.Col, "")
		return
	}

	buf.ReplaceRange(end.Line, 0, end.Col, "")
	for i := end.Line - 1; i > start.Line; i-- {
		buf.ReplaceRange(i, 0, buf.LineLen(i), "")
	}
	buf.ReplaceRange(start.Line, start.Col, buf.LineLen(start.Line)-start.Col, "")

	for i := 0; i < end.Line-start.Line; i++ {
		buf.DeleteForward(start.Line, buf.LineLen(start.Line))
	}
}
