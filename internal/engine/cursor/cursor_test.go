package cursor

import (
	"testing"

	"github.com/quillforge/quill/internal/engine/buffer"
)

func TestMoveBasics(t *testing.T) {
	buf := buffer.FromString("line1\nline2")
	c := New()

	c.Move(buf, Down, false)
	if c.Position() != (buffer.Position{Line: 1, Col: 0}) {
		t.Errorf("after Down: %v", c.Position())
	}
	c.Move(buf, Right, false)
	if c.Position() != (buffer.Position{Line: 1, Col: 1}) {
		t.Errorf("after Right: %v", c.Position())
	}
	c.Move(buf, Up, false)
	if c.Position() != (buffer.Position{Line: 0, Col: 1}) {
		t.Errorf("after Up: %v", c.Position())
	}
	c.Move(buf, Left, false)
	if c.Position() != (buffer.Position{Line: 0, Col: 0}) {
		t.Errorf("after Left: %v", c.Position())
	}
}

func TestMoveAtDocumentBoundariesIsNoop(t *testing.T) {
	buf := buffer.FromString("ab\ncd")
	c := New()

	c.Move(buf, Up, false)
	c.Move(buf, Left, false)
	if c.Position() != (buffer.Position{}) {
		t.Errorf("moved past document start: %v", c.Position())
	}

	c.MoveDocEnd(buf, false)
	c.Move(buf, Down, false)
	c.Move(buf, Right, false)
	if c.Position() != (buffer.Position{Line: 1, Col: 2}) {
		t.Errorf("moved past document end: %v", c.Position())
	}
}

func TestLeftWrapsToPreviousLineEnd(t *testing.T) {
	buf := buffer.FromString("hello\nworld")
	c := New()
	c.Set(buf, buffer.Position{Line: 1, Col: 0})

	c.Move(buf, Left, false)
	if c.Position() != (buffer.Position{Line: 0, Col: 5}) {
		t.Errorf("Left at col 0: %v", c.Position())
	}
}

func TestRightWrapsToNextLineStart(t *testing.T) {
	buf := buffer.FromString("hello\nworld")
	c := New()
	c.Set(buf, buffer.Position{Line: 0, Col: 5})

	c.Move(buf, Right, false)
	if c.Position() != (buffer.Position{Line: 1, Col: 0}) {
		t.Errorf("Right at line end: %v", c.Position())
	}
}

func TestUpDownClampColumn(t *testing.T) {
	buf := buffer.FromString("long line here\nhi\nanother long one")
	c := New()
	c.Set(buf, buffer.Position{Line: 0, Col: 10})

	c.Move(buf, Down, false)
	if c.Position() != (buffer.Position{Line: 1, Col: 2}) {
		t.Errorf("Down onto short line: %v", c.Position())
	}
	// The clamped column is the new column; it is not restored.
	c.Move(buf, Down, false)
	if c.Position() != (buffer.Position{Line: 2, Col: 2}) {
		t.Errorf("Down onto long line: %v", c.Position())
	}
}

func TestMovePage(t *testing.T) {
	lines := make([]byte, 0, 400)
	for i := 0; i < 100; i++ {
		lines = append(lines, "line\n"...)
	}
	buf := buffer.FromString(string(lines[:len(lines)-1]))
	c := New()

	c.MovePage(buf, 30, false)
	if c.Position().Line != 30 {
		t.Errorf("page down: line %d, want 30", c.Position().Line)
	}
	c.MovePage(buf, -45, false)
	if c.Position().Line != 0 {
		t.Errorf("page up clamps to 0, got %d", c.Position().Line)
	}
	c.MovePage(buf, 500, false)
	if c.Position().Line != 99 {
		t.Errorf("page down clamps to last line, got %d", c.Position().Line)
	}
}

func TestExtendSetsAnchorOnce(t *testing.T) {
	buf := buffer.FromString("hello world")
	c := New()

	c.Move(buf, Right, true)
	c.Move(buf, Right, true)
	start, end, ok := c.Selection()
	if !ok {
		t.Fatal("expected selection")
	}
	if start != (buffer.Position{Line: 0, Col: 0}) || end != (buffer.Position{Line: 0, Col: 2}) {
		t.Errorf("selection = %v..%v", start, end)
	}
}

func TestMoveWithoutExtendClearsSelection(t *testing.T) {
	buf := buffer.FromString("hello")
	c := New()
	c.Move(buf, Right, true)
	if !c.HasSelection() {
		t.Fatal("expected selection")
	}
	c.Move(buf, Right, false)
	if c.HasSelection() {
		t.Error("selection survived plain movement")
	}
}

func TestSelectionNormalization(t *testing.T) {
	buf := buffer.FromString("hello world")
	c := New()

	// Drag backward: anchor after the live end.
	c.Set(buf, buffer.Position{Line: 0, Col: 5})
	c.StartSelection()
	c.ExtendTo(buf, buffer.Position{Line: 0, Col: 0})

	start, end, ok := c.Selection()
	if !ok {
		t.Fatal("expected selection")
	}
	if start != (buffer.Position{Line: 0, Col: 0}) || end != (buffer.Position{Line: 0, Col: 5}) {
		t.Errorf("normalized selection = %v..%v", start, end)
	}

	// Forward construction yields the same normalized range.
	c.ClearSelection()
	c.Set(buf, buffer.Position{Line: 0, Col: 0})
	c.StartSelection()
	c.ExtendTo(buf, buffer.Position{Line: 0, Col: 5})
	s2, e2, _ := c.Selection()
	if s2 != start || e2 != end {
		t.Errorf("forward selection = %v..%v, want %v..%v", s2, e2, start, end)
	}
}

func TestZeroLengthSelectionIsNoSelection(t *testing.T) {
	buf := buffer.FromString("hello")
	c := New()
	c.Set(buf, buffer.Position{Line: 0, Col: 2})
	c.StartSelection()
	if c.HasSelection() {
		t.Error("zero-length selection reported as selection")
	}
}

func TestSelectedText(t *testing.T) {
	buf := buffer.FromString("line1\nline2\nline3")
	c := New()
	c.Set(buf, buffer.Position{Line: 0, Col: 2})
	c.StartSelection()
	c.ExtendTo(buf, buffer.Position{Line: 2, Col: 3})

	text, ok := c.SelectedText(buf)
	if !ok || text != "ne1\nline2\nlin" {
		t.Errorf("SelectedText = %q, %v", text, ok)
	}
}

func TestClampAfterShrink(t *testing.T) {
	buf := buffer.FromString("hello\nworld")
	c := New()
	c.Set(buf, buffer.Position{Line: 1, Col: 5})

	buf.Reset("hi")
	c.Clamp(buf)
	if c.Position() != (buffer.Position{Line: 0, Col: 2}) {
		t.Errorf("clamped position = %v", c.Position())
	}
}

func TestClampRevalidatesAnchor(t *testing.T) {
	buf := buffer.FromString("abc\ndef")
	c := New()
	c.Set(buf, buffer.Position{Line: 1, Col: 3})
	c.StartSelection()
	c.Set(buf, buffer.Position{Line: 0, Col: 0})

	buf.Reset("ab")
	c.Clamp(buf)

	start, end, ok := c.Selection()
	if !ok {
		t.Fatal("expected selection")
	}
	if start != (buffer.Position{Line: 0, Col: 0}) || end != (buffer.Position{Line: 0, Col: 2}) {
		t.Errorf("clamped selection = %v..%v", start, end)
	}
	if text, _ := c.SelectedText(buf); text != "ab" {
		t.Errorf("selected text = %q", text)
	}
}

func TestClampCollapsesSelectionOntoCaret(t *testing.T) {
	buf := buffer.FromString("a\nbb")
	c := New()
	c.Set(buf, buffer.Position{Line: 1, Col: 2})
	c.StartSelection()
	c.Set(buf, buffer.Position{Line: 0, Col: 1})

	buf.Reset("a")
	c.Clamp(buf)

	if _, _, ok := c.Selection(); ok {
		t.Error("zero-length clamped selection reported ok")
	}
}
